package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/arrangement"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/errors"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry"
)

// lookFile is the JSON input format for the compose and save commands.
// Items without a position take the next free default slot, so a bare list
// of items is a valid file.
type lookFile struct {
	Name        string         `json:"name,omitempty"`
	DeviceClass string         `json:"device_class,omitempty"`
	Items       []lookFileItem `json:"items"`
}

type lookFileItem struct {
	ID       string             `json:"id"`
	Name     string             `json:"name,omitempty"`
	Category string             `json:"category,omitempty"`
	Type     string             `json:"type,omitempty"`
	ImageRef string             `json:"image_ref"`
	Pos      *geometry.Position `json:"pos,omitempty"`
	Scale    float64            `json:"scale,omitempty"`
}

// loadLookFile parses the file and builds the arrangement it describes.
// The file's device_class overrides the configured one when present.
func (c *CLI) loadLookFile(path string) (*lookFile, *arrangement.Arrangement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	var lf lookFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(lf.Items) == 0 {
		return nil, nil, fmt.Errorf("%s: a look needs at least one item", path)
	}

	profile := c.Config.Profile()
	if lf.DeviceClass != "" {
		profile = geometry.ProfileFor(geometry.DeviceClass(lf.DeviceClass))
	}

	arr := arrangement.New(profile)
	for _, it := range lf.Items {
		if err := errors.ValidateItemID(it.ID); err != nil {
			return nil, nil, err
		}
		if err := errors.ValidateImageRef(it.ImageRef); err != nil {
			return nil, nil, fmt.Errorf("item %s: %w", it.ID, err)
		}

		item := arrangement.Item{
			ID:       it.ID,
			Name:     it.Name,
			Category: it.Category,
			Type:     itemType(it.Type),
			ImageRef: it.ImageRef,
		}
		if it.Pos != nil {
			scale := it.Scale
			if scale == 0 {
				scale = geometry.DefaultScale
			}
			arr.AddAt(item, *it.Pos, scale)
			continue
		}
		arr.Add(item)
		if it.Scale != 0 {
			arr.SetScale(it.ID, it.Scale)
		}
	}
	return &lf, arr, nil
}

// palette returns an item lookup over the file's contents.
func (lf *lookFile) palette() func(string) (arrangement.Item, bool) {
	byID := make(map[string]arrangement.Item, len(lf.Items))
	for _, it := range lf.Items {
		byID[it.ID] = arrangement.Item{
			ID:       it.ID,
			Name:     it.Name,
			Category: it.Category,
			Type:     itemType(it.Type),
			ImageRef: it.ImageRef,
		}
	}
	return func(id string) (arrangement.Item, bool) {
		item, ok := byID[id]
		return item, ok
	}
}

func itemType(s string) arrangement.ItemType {
	if s == string(arrangement.ItemTypeNewPurchase) {
		return arrangement.ItemTypeNewPurchase
	}
	return arrangement.ItemTypeCloset
}
