// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package protocol

// Feature is a bit index into the handshake feature bitmask. Features
// only travel on the wire for protocol versions 1.7.0 and later.
type Feature int

const (
	FeatureUserAttributes Feature = iota
	FeatureExecuteTaskByName
	FeatureClusterStates
	FeatureClusterGroups
	FeatureServiceInvoke
	FeatureDefaultQueryTimeout
	FeatureQueryPartitionsBatchSize
	FeatureBinaryConfiguration

	featureCount
)

var featureNames = map[Feature]string{
	FeatureUserAttributes:           "user-attributes",
	FeatureExecuteTaskByName:        "execute-task-by-name",
	FeatureClusterStates:            "cluster-states",
	FeatureClusterGroups:            "cluster-groups",
	FeatureServiceInvoke:            "service-invoke",
	FeatureDefaultQueryTimeout:      "default-query-timeout",
	FeatureQueryPartitionsBatchSize: "query-partitions-batch-size",
	FeatureBinaryConfiguration:      "binary-configuration",
}

// String returns the feature's symbolic name.
func (f Feature) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return "unknown"
}

// FeatureSet is a bitmask over Feature values, in the wire form the
// handshake exchanges: a byte slice where feature f occupies bit
// (f % 8) of byte (f / 8).
type FeatureSet struct {
	bits []byte
}

// NewFeatureSet returns a set containing exactly the given features.
func NewFeatureSet(features ...Feature) FeatureSet {
	var fs FeatureSet
	for _, f := range features {
		fs.set(f)
	}
	return fs
}

// AllFeatures returns the set of every feature this client implements.
func AllFeatures() FeatureSet {
	features := make([]Feature, 0, featureCount)
	for f := Feature(0); f < featureCount; f++ {
		features = append(features, f)
	}
	return NewFeatureSet(features...)
}

// FeatureSetFromBytes reconstructs a set from its wire form. The
// bytes are copied.
func FeatureSetFromBytes(bits []byte) FeatureSet {
	fs := FeatureSet{bits: make([]byte, len(bits))}
	copy(fs.bits, bits)
	return fs
}

func (fs *FeatureSet) set(f Feature) {
	byteIdx := int(f) / 8
	for len(fs.bits) <= byteIdx {
		fs.bits = append(fs.bits, 0)
	}
	fs.bits[byteIdx] |= 1 << (uint(f) % 8)
}

// Has reports whether f is in the set.
func (fs FeatureSet) Has(f Feature) bool {
	byteIdx := int(f) / 8
	if byteIdx >= len(fs.bits) {
		return false
	}
	return fs.bits[byteIdx]&(1<<(uint(f)%8)) != 0
}

// Intersect returns the features present in both sets.
func (fs FeatureSet) Intersect(other FeatureSet) FeatureSet {
	n := len(fs.bits)
	if len(other.bits) < n {
		n = len(other.bits)
	}
	out := FeatureSet{bits: make([]byte, n)}
	for i := 0; i < n; i++ {
		out.bits[i] = fs.bits[i] & other.bits[i]
	}
	return out
}

// Bytes returns the wire form. The caller owns the returned slice.
func (fs FeatureSet) Bytes() []byte {
	out := make([]byte, len(fs.bits))
	copy(out, fs.bits)
	return out
}

// Names returns the symbolic names of known features in the set.
func (fs FeatureSet) Names() []string {
	var names []string
	for f := Feature(0); f < featureCount; f++ {
		if fs.Has(f) {
			names = append(names, f.String())
		}
	}
	return names
}
