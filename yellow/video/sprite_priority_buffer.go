package video

// SpritePriorityBuffer resolves which sprite owns each pixel of a scanline.
// See https://gbdev.io/pandocs/OAM.html#drawing-priority.
//
// On DMG the sprite with the lower X coordinate wins an overlapping pixel.
// When X matches, the lower OAM index wins:
//
//	Pixels:    10 11 12 13 14 15 16 17 18 19 20 21 22 23 24 25
//	Sprite 1:           [-----D-----]                          (X=12, OAM=1)
//	Sprite 3:           [-----C-----]                          (X=12, OAM=3)
//	Sprite 5:  [-----E-----]                                   (X=10, OAM=5)
//	Result:    [-----E-----]--D-----]
//
// Rather than sorting the selected sprites, each sprite claims the pixels it
// covers during OAM scan, and the renderer later only draws owned pixels.
type SpritePriorityBuffer struct {
	// -1 means unowned
	ownerIndex [FramebufferWidth]int
	ownerX     [FramebufferWidth]int
}

// Clear resets the buffer for a new scanline.
func (s *SpritePriorityBuffer) Clear() {
	for i := range FramebufferWidth {
		s.ownerIndex[i] = -1
		s.ownerX[i] = 0xFF
	}
}

// TryClaimPixel claims pixelX for the sprite if it outranks the current
// owner and reports whether it did.
func (s *SpritePriorityBuffer) TryClaimPixel(pixelX, spriteIndex, spriteX int) bool {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return false
	}

	owner := s.ownerIndex[pixelX]
	currentX := s.ownerX[pixelX]

	if owner == -1 || spriteX < currentX || (spriteX == currentX && spriteIndex < owner) {
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
		return true
	}
	return false
}

// Owner returns the OAM index that owns pixelX, or -1.
func (s *SpritePriorityBuffer) Owner(pixelX int) int {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return -1
	}
	return s.ownerIndex[pixelX]
}
