package dataset

import (
	"fmt"
	"sort"
)

// ValidatePartition checks the camera-pair invariant for a partition: every
// recording must be observed by exactly the reference camera and the
// partition's comparison camera, and no (recording, frame, camera) triple may
// occur twice.
func ValidatePartition(t *Table, partition Partition) error {
	comparison := partition.Comparison()

	cameras := make(map[string]map[Camera]struct{})
	seen := make(map[rowIdentity]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		identity := rowIdentity{key: row.Key(), camera: row.Camera}
		if _, dup := seen[identity]; dup {
			return fmt.Errorf("%w: duplicate row for recording %s frame %d camera %s", ErrSchema, row.ID, row.FrameNr, row.Camera)
		}
		seen[identity] = struct{}{}

		set, ok := cameras[row.ID]
		if !ok {
			set = make(map[Camera]struct{}, 2)
			cameras[row.ID] = set
		}
		set[row.Camera] = struct{}{}
	}

	ids := make([]string, 0, len(cameras))
	for id := range cameras {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		set := cameras[id]
		if _, ok := set[CameraReference]; !ok {
			return fmt.Errorf("%w: recording %s missing reference camera %s", ErrCameraPair, id, CameraReference)
		}
		if _, ok := set[comparison]; !ok {
			return fmt.Errorf("%w: recording %s missing comparison camera %s", ErrCameraPair, id, comparison)
		}
		if len(set) != 2 {
			for camera := range set {
				if camera != CameraReference && camera != comparison {
					return fmt.Errorf("%w: recording %s has camera %s outside pair {%s, %s}", ErrCameraPair, id, camera, CameraReference, comparison)
				}
			}
		}
	}
	return nil
}

type rowIdentity struct {
	key    FrameKey
	camera Camera
}
