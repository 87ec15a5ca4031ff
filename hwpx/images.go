package hwpx

import (
	"bytes"
	"fmt"
	"image"
	"path"
	"sort"
	"strings"

	"github.com/hanedit/hanedit/model"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// pixels render at 96 per inch; HWP units are points (1/72 in) times 100
const hwpUnitsPerPixel = 72.0 / 96.0 * 100

// AddImage stores image bytes as a binary attachment and appends a
// picture paragraph to the section. Width and height come from the image
// header; undecodable data fails with ErrInvalidArgument.
func AddImage(pkg *model.Package, sectionIdx int, name string, data []byte) error {
	sec, err := pkg.Section(sectionIdx)
	if err != nil {
		return err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding image %s: %v: %w", name, err, model.ErrInvalidArgument)
	}

	binName := uniqueBinName(pkg, name, format)
	pkg.BinData[binName] = data

	w := int(float64(cfg.Width) * hwpUnitsPerPixel)
	h := int(float64(cfg.Height) * hwpUnitsPerPixel)
	sec.Elements = append(sec.Elements, &model.Paragraph{
		Runs: []model.Run{{
			RawContent: fmt.Sprintf(
				`<hp:pic binaryItemIDRef="%s"><hp:sz width="%d" height="%d"/></hp:pic>`,
				xmlEscape(binName), w, h),
		}},
		Start: -1, End: -1,
		Dirty: true,
	})
	return nil
}

// AddImageInCell stores image bytes as a binary attachment and appends
// a picture paragraph to cell (row, col) of the table at element index
// element.
func AddImageInCell(pkg *model.Package, sectionIdx, element, row, col int, name string, data []byte) error {
	sec, err := pkg.Section(sectionIdx)
	if err != nil {
		return err
	}
	tbl, err := sec.TableAt(element)
	if err != nil {
		return err
	}
	cell := tbl.OwnerAt(row, col)
	if cell == nil {
		return fmt.Errorf("cell (%d,%d) outside %dx%d grid: %w", row, col, len(tbl.Rows), tbl.Cols, model.ErrNotFound)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding image %s: %v: %w", name, err, model.ErrInvalidArgument)
	}

	binName := uniqueBinName(pkg, name, format)
	pkg.BinData[binName] = data

	w := int(float64(cfg.Width) * hwpUnitsPerPixel)
	h := int(float64(cfg.Height) * hwpUnitsPerPixel)
	cell.Content = append(cell.Content, &model.Paragraph{
		Runs: []model.Run{{
			RawContent: fmt.Sprintf(
				`<hp:pic binaryItemIDRef="%s"><hp:sz width="%d" height="%d"/></hp:pic>`,
				xmlEscape(binName), w, h),
		}},
		Start: -1, End: -1,
		Dirty: true,
	})
	tbl.Dirty = true
	return nil
}

// uniqueBinName picks an attachment name that does not collide with the
// existing binary data, defaulting the extension from the decoded format.
func uniqueBinName(pkg *model.Package, name, format string) string {
	base := path.Base(name)
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	if path.Ext(base) == "" && format != "" {
		base += "." + format
	}
	if _, taken := pkg.BinData[base]; !taken {
		return base
	}
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s%d%s", stem, n, ext)
		if _, taken := pkg.BinData[candidate]; !taken {
			return candidate
		}
	}
}

// Images lists the package's binary attachment names in sorted order.
func Images(pkg *model.Package) []string {
	names := make([]string, 0, len(pkg.BinData))
	for name := range pkg.BinData {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
