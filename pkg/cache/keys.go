package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Stage names the pipeline stage a cache entry belongs to. Every key starts
// with its stage, optionally behind a [ScopedKeyer] prefix.
type Stage string

const (
	StageSnapshot Stage = "snapshot"
	StageScene    Stage = "scene"
	StageArtifact Stage = "artifact"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageSnapshot, StageScene, StageArtifact}

// TTL returns the default lifetime of entries of the stage. Records go
// stale quickly; layouts and renders are pure functions of their keys.
func (s Stage) TTL() time.Duration {
	switch s {
	case StageSnapshot:
		return 10 * time.Minute
	case StageScene:
		return 24 * time.Hour
	case StageArtifact:
		return 7 * 24 * time.Hour
	}
	return 0
}

// StageOf returns the stage of a key built by a [Keyer], looking past any
// scope prefix.
func StageOf(key string) (Stage, bool) {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return "", false
	}
	s := Stage(key[strings.LastIndexByte(key[:i], ':')+1 : i])
	for _, known := range Stages {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// stageKey returns "<stage>:<sha256 of the JSON-encoded parts>".
func stageKey(s Stage, parts ...any) string {
	data, _ := json.Marshal(parts)
	return string(s) + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data. Snapshot and scene content hashes
// chain the keys of later stages.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
