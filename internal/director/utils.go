package director

import (
	"path/filepath"
	"strings"
)

// PlanPath returns the plan file that sits next to a video: out/v.mp4 -> out/v.plan.yaml
func PlanPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return strings.TrimSuffix(videoPath, ext) + ".plan.yaml"
}
