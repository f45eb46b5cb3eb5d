package workload

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"imagebench/errors"
)

const (
	// Seed is the base seed; image i is rendered from Seed+i so output does
	// not depend on the order images are generated in.
	Seed = 42

	rectsPerImage = 10
	imagePrefix   = "img_"
)

// ImageName returns the file name of the i-th synthetic image.
func ImageName(i int) string {
	return fmt.Sprintf("%s%06d%s", imagePrefix, i, Extension)
}

// Planned returns the items for n synthetic images in dir, in name order.
func Planned(dir string, n int) []Item {
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, NewItem(filepath.Join(dir, ImageName(i))))
	}
	return items
}

// Render draws image i: a random background and ten random rectangles, so
// the payload does not compress away.
func Render(i, pixelsPerSide int) *image.RGBA {
	r := rand.New(rand.NewSource(Seed + int64(i)))
	img := image.NewRGBA(image.Rect(0, 0, pixelsPerSide, pixelsPerSide))

	draw.Draw(img, img.Bounds(), &image.Uniform{C: randomColor(r)}, image.Point{}, draw.Src)
	for n := 0; n < rectsPerImage; n++ {
		c := randomColor(r)
		w := 10 + r.Intn(max(1, pixelsPerSide-10))
		h := 10 + r.Intn(max(1, pixelsPerSide-10))
		x := r.Intn(max(1, pixelsPerSide-w))
		y := r.Intn(max(1, pixelsPerSide-h))
		draw.Draw(img, image.Rect(x, y, x+w, y+h), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}
	return img
}

func randomColor(r *rand.Rand) color.RGBA {
	return color.RGBA{R: uint8(r.Intn(256)), G: uint8(r.Intn(256)), B: uint8(r.Intn(256)), A: 0xff}
}

// WriteImage renders the image for item index i to path as PNG and returns
// the number of bytes written.
func WriteImage(path string, i, pixelsPerSide int) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", path)
	}

	cw := &countingWriter{w: bufio.NewWriter(f)}
	if err := png.Encode(cw, Render(i, pixelsPerSide)); err != nil {
		f.Close()
		return 0, errors.Wrapf(err, "encode %s", path)
	}
	if err := cw.w.Flush(); err != nil {
		f.Close()
		return 0, errors.Wrapf(err, "flush %s", path)
	}
	if err := f.Close(); err != nil {
		return 0, errors.Wrapf(err, "close %s", path)
	}
	return cw.n, nil
}

type countingWriter struct {
	w *bufio.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// ImageIndex recovers i from a name produced by ImageName.
// The index may have more than six digits.
func ImageIndex(name string) (int, error) {
	digits, ok := strings.CutPrefix(name, imagePrefix)
	if ok {
		digits, ok = strings.CutSuffix(digits, Extension)
	}
	if !ok || digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, errors.Newf("not a synthetic image name: %s", name)
	}
	i, err := strconv.Atoi(digits)
	if err != nil {
		return 0, errors.Wrapf(err, "not a synthetic image name: %s", name)
	}
	return i, nil
}
