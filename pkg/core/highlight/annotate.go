package highlight

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// WriteMarked writes a copy of the input PDF with a translucent square
// annotation over every bounding box. Marks are keyed by 1-based page
// number. An empty mark set still produces the output file; review tooling
// expects the highlighted copy to exist for every processed deal.
func WriteMarked(inPath, outPath string, marks map[int][]BoundingBox) error {
	ctx, err := api.ReadContextFile(inPath)
	if err != nil {
		return fmt.Errorf("read pdf for annotation: %w", err)
	}
	xRefTable := ctx.XRefTable

	for pageNr, boxes := range marks {
		if pageNr < 1 || pageNr > ctx.PageCount || len(boxes) == 0 {
			continue
		}

		pageDict, _, _, err := xRefTable.PageDict(pageNr, false)
		if err != nil {
			return fmt.Errorf("page %d dict: %w", pageNr, err)
		}

		var annots types.Array
		if obj, found := pageDict.Find("Annots"); found {
			if arr, err := xRefTable.DereferenceArray(obj); err == nil {
				annots = arr
			}
		}

		for _, b := range boxes {
			indRef, err := xRefTable.IndRefForNewObject(markDict(b))
			if err != nil {
				return fmt.Errorf("page %d annotation object: %w", pageNr, err)
			}
			annots = append(annots, *indRef)
		}
		pageDict["Annots"] = annots
	}

	if err := api.WriteContextFile(ctx, outPath); err != nil {
		return fmt.Errorf("write annotated pdf: %w", err)
	}
	return nil
}

// markDict builds a printable translucent yellow square annotation dict.
func markDict(b BoundingBox) types.Dict {
	return types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name("Square"),
		"Rect":    types.NewNumberArray(b.X0, b.Y0, b.X1, b.Y1),
		"C":       types.NewNumberArray(1, 0.9, 0.2),
		"IC":      types.NewNumberArray(1, 0.9, 0.2),
		"CA":      types.Float(0.35),
		"F":       types.Integer(4),
	}
}
