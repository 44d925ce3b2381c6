package store

import (
	"os"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// extractEXIF reads the EXIF tag set from an image file, flattened into a
// generic map so it can be stored verbatim as exif.json. Files with no
// EXIF segment (PNG, most screenshots) return an empty map, not an error.
func extractEXIF(path string) (map[string]interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return map[string]interface{}{}, nil
	}

	out := map[string]interface{}{}
	x.Walk(exifWalker(out))
	return out, nil
}

type exifWalker map[string]interface{}

func (w exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	w[string(name)] = tag.String()
	return nil
}
