package minutiae

import "testing"

func flatImage(value byte) []byte {
	img := make([]byte, ImageSize)
	for i := range img {
		img[i] = value
	}
	return img
}

func TestExtractFlatImageYieldsFewPoints(t *testing.T) {
	// A uniform image should yield zero minutiae: every neighborhood
	// average equals the center pixel.
	img := flatImage(0x00)
	points := Extract(img)
	if len(points) != 0 {
		t.Fatalf("len(points) = %d, want 0 for a flat image", len(points))
	}
}

func TestExtractDeterministic(t *testing.T) {
	img := make([]byte, ImageSize)
	for i := range img {
		img[i] = byte((i * 37) % 256)
	}
	a := Extract(img)
	b := Extract(img)
	if len(a) != len(b) {
		t.Fatalf("len(a)=%d len(b)=%d, extraction is not deterministic", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestExtractBoundedAt200(t *testing.T) {
	img := make([]byte, ImageSize)
	for y := 0; y < ImageHeight; y++ {
		for x := 0; x < ImageWidth; x++ {
			if (x+y)%2 == 0 {
				img[y*ImageWidth+x] = 0xff
			}
		}
	}
	points := Extract(img)
	if len(points) > maxPoints {
		t.Fatalf("len(points) = %d, want <= %d", len(points), maxPoints)
	}
}

func TestExtractRowMajorOrder(t *testing.T) {
	img := make([]byte, ImageSize)
	for y := 0; y < ImageHeight; y++ {
		for x := 0; x < ImageWidth; x++ {
			if (x+y)%3 == 0 {
				img[y*ImageWidth+x] = 0xff
			}
		}
	}
	points := Extract(img)
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		if cur.Y < prev.Y || (cur.Y == prev.Y && cur.X < prev.X) {
			t.Fatalf("points not in row-major order at index %d: %+v then %+v", i, prev, cur)
		}
	}
}
