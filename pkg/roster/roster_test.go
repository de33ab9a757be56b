package roster

import (
	"math"
	"testing"
)

func TestFirstName(t *testing.T) {
	tests := []struct {
		name   string
		person *Person
		want   string
	}{
		{"two words", &Person{Name: "Ada Lovelace"}, "Ada"},
		{"single word", &Person{Name: "Grace"}, "Grace"},
		{"leading space", &Person{Name: "  Alan Turing"}, "Alan"},
		{"empty", &Person{}, Unknown},
		{"nil", nil, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.person.FirstName(); got != tt.want {
				t.Errorf("FirstName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSnapshotLookups(t *testing.T) {
	s := &Snapshot{
		People:  []*Person{{ID: "p1", Name: "Ada"}},
		Skills:  []*Skill{{ID: "s1", Name: "Go"}},
		Targets: []*Target{{ID: "t1", Name: "Warehouse"}},
		Roles:   []*Role{{ID: "r1", Name: "Owner"}},
	}

	if p, ok := s.Person("p1"); !ok || p.Name != "Ada" {
		t.Errorf("Person(p1) = %v, %v", p, ok)
	}
	if _, ok := s.Person("missing"); ok {
		t.Error("Person(missing) should not be found")
	}
	if sk, ok := s.Skill("s1"); !ok || sk.Name != "Go" {
		t.Errorf("Skill(s1) = %v, %v", sk, ok)
	}
	if tg, ok := s.Target("t1"); !ok || tg.Name != "Warehouse" {
		t.Errorf("Target(t1) = %v, %v", tg, ok)
	}
	if r, ok := s.Role("r1"); !ok || r.Name != "Owner" {
		t.Errorf("Role(r1) = %v, %v", r, ok)
	}

	var nilSnap *Snapshot
	if _, ok := nilSnap.Person("p1"); ok {
		t.Error("nil snapshot lookup should fail")
	}
}

func TestHoursByPerson(t *testing.T) {
	s := &Snapshot{Assignments: []*Assignment{
		{PersonID: "a", TargetID: "t1", Hours: 10},
		{PersonID: "a", TargetID: "t2", Hours: 5},
		{PersonID: "b", TargetID: "t1", Hours: -3},
		{PersonID: "b", TargetID: "t2", Hours: math.NaN()},
		{PersonID: "c", TargetID: "t2", Hours: math.Inf(1)},
		nil,
	}}

	got := s.HoursByPerson()
	if got["a"] != 15 {
		t.Errorf("hours[a] = %v, want 15", got["a"])
	}
	if _, ok := got["b"]; ok {
		t.Errorf("invalid hours should be ignored, got %v", got["b"])
	}
	if _, ok := got["c"]; ok {
		t.Errorf("infinite hours should be ignored, got %v", got["c"])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		snap    *Snapshot
		wantErr bool
	}{
		{"empty", &Snapshot{}, false},
		{"valid", &Snapshot{People: []*Person{{ID: "1"}, {ID: "2"}}}, false},
		{"duplicate person", &Snapshot{People: []*Person{{ID: "1"}, {ID: "1"}}}, true},
		{"missing id", &Snapshot{People: []*Person{{Name: "x"}}}, true},
		{"nil person", &Snapshot{People: []*Person{nil}}, true},
		{"duplicate category", &Snapshot{Categories: []Category{{Name: "A"}, {Name: "A"}}}, true},
		{"nil snapshot", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
