package image

import (
	"fmt"
	"image"
	"kiki/pkg/config"
	"kiki/pkg/frame"
	"kiki/pkg/traversal"
	"kiki/test"
	"testing"
)

type testFunc func(t *testing.T, mode traversal.Mode, translucent bool)

func runImageTestsWithAllModesAndOpaquenessSettings(t *testing.T, testFunc testFunc) {
	for _, mode := range []traversal.Mode{traversal.Sequential, traversal.Random} {
		modeCopy := mode
		t.Run(fmt.Sprintf("mode-%s", mode), func(t *testing.T) {
			t.Parallel()
			t.Run("opaque", func(t *testing.T) {
				t.Parallel()
				testFunc(t, modeCopy, false)
			})
			t.Run("translucent", func(t *testing.T) {
				t.Parallel()
				testFunc(t, modeCopy, true)
			})
		})
	}
}

func generateImage(width, height int, translucent bool) *image.NRGBA {
	return test.GenerateImage(int64(width*height), width, height, translucent)
}

func calculateBytesThatFitInImage(width, height int) int {
	return width*height*channelsToWrite/8 - frame.CapacityOverhead
}

func lsbConfig(mode traversal.Mode, key string) config.LSBConfig {
	return config.LSBConfig{Mode: mode, Key: key}
}

func getOpaquenessLabel(translucent bool) string {
	if translucent {
		return "translucent"
	}
	return "opaque"
}
