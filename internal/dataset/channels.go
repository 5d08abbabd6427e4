package dataset

// Channels is the canonical list of tracked blendshape channels: eye, jaw,
// mouth, brow, cheek, and nose regions. Input files may carry a subset; with
// strict validation enabled, columns outside this list are rejected.
var Channels = []string{
	"eyeBlinkLeft",
	"eyeBlinkRight",
	"jawForward",
	"jawLeft",
	"jawOpen",
	"jawRight",
	"mouthClose",
	"mouthDimpleLeft",
	"mouthDimpleRight",
	"mouthFrownLeft",
	"mouthFrownRight",
	"mouthFunnel",
	"mouthLeft",
	"mouthLowerDownLeft",
	"mouthLowerDownRight",
	"mouthPressLeft",
	"mouthPressRight",
	"mouthPucker",
	"mouthRight",
	"mouthRollLower",
	"mouthRollUpper",
	"mouthShrugLower",
	"mouthShrugUpper",
	"mouthSmileLeft",
	"mouthSmileRight",
	"mouthStretchLeft",
	"mouthStretchRight",
	"mouthUpperUpLeft",
	"mouthUpperUpRight",
	"browDownLeft",
	"browDownRight",
	"browInnerUp",
	"browOuterUpLeft",
	"browOuterUpRight",
	"cheekPuff",
	"cheekSquintLeft",
	"cheekSquintRight",
	"noseSneerLeft",
	"noseSneerRight",
}

var canonicalChannels = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Channels))
	for _, name := range Channels {
		set[name] = struct{}{}
	}
	return set
}()

// IsCanonicalChannel reports whether name is in the canonical channel list.
func IsCanonicalChannel(name string) bool {
	_, ok := canonicalChannels[name]
	return ok
}
