// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"sort"

	"app/core/discovery/domain"
	"app/fs"
)

// attributeFile is the on-disk shape of the attribute schema file, loaded
// once at startup (spec §6 "Attribute schema contract"). The source this
// format is grounded on additionally supports CSV-backed value lists and
// per-language translations; this port keeps only the fields the query
// evaluator needs.
type attributeFile struct {
	Attributes []attributeFileEntry `json:"attribute"`
}

type attributeFileEntry struct {
	Key         string  `json:"key"`
	Mode        string  `json:"mode"` // "bitflag" | "one_level" | "two_level" | "number_list"
	ID          int32   `json:"id"`
	OrderNumber uint16  `json:"order_number"`
	Values      []int32 `json:"values"`
}

// LoadAttributeSchema reads and validates the attribute schema file at
// path from fsys, returning an immutable domain.AttributeSchema. Any
// validation failure is fatal to startup (spec §7).
func LoadAttributeSchema(fsys fs.FS, path string) (*domain.AttributeSchema, error) {
	raw, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrSchemaValidation, path, err)
	}

	var file attributeFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrSchemaValidation, path, err)
	}

	return validateAttributes(file.Attributes)
}

func validateAttributes(entries []attributeFileEntry) (*domain.AttributeSchema, error) {
	keys := make(map[string]bool, len(entries))
	ids := make(map[int32]bool, len(entries))
	orderNumbers := make(map[uint16]bool, len(entries))

	for _, e := range entries {
		if keys[e.Key] {
			return nil, fmt.Errorf("%w: duplicate key %q", domain.ErrSchemaValidation, e.Key)
		}
		keys[e.Key] = true

		if ids[e.ID] {
			return nil, fmt.Errorf("%w: duplicate id %d", domain.ErrSchemaValidation, e.ID)
		}
		ids[e.ID] = true

		if orderNumbers[e.OrderNumber] {
			return nil, fmt.Errorf("%w: duplicate order number %d", domain.ErrSchemaValidation, e.OrderNumber)
		}
		orderNumbers[e.OrderNumber] = true

		if len(e.Values) == 0 {
			return nil, fmt.Errorf("%w: attribute %q has no values", domain.ErrSchemaValidation, e.Key)
		}
	}

	// IDs must form a contiguous 1..N sequence.
	for i := 1; i <= len(entries); i++ {
		if !ids[int32(i)] {
			return nil, fmt.Errorf("%w: id %d is missing, all numbers between 1 and %d must be used", domain.ErrSchemaValidation, i, len(entries))
		}
	}

	defs := make([]domain.AttributeDefinition, 0, len(entries))
	for _, e := range entries {
		mode, err := parseMode(e.Mode)
		if err != nil {
			return nil, fmt.Errorf("%w: attribute %q: %v", domain.ErrSchemaValidation, e.Key, err)
		}

		if mode == domain.AttributeModeBitflag {
			for _, v := range e.Values {
				if v < 1 || v > 0x8000 || bits.OnesCount32(uint32(v)) != 1 {
					return nil, fmt.Errorf("%w: attribute %q: bitflag value %d must be a power of two in [1, 0x8000]", domain.ErrSchemaValidation, e.Key, v)
				}
			}
		} else if mode != domain.AttributeModeNumberList {
			sorted := append([]int32(nil), e.Values...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
			for i, v := range sorted {
				if v != int32(i+1) {
					return nil, fmt.Errorf("%w: attribute %q: value ids must form a contiguous 1..M sequence", domain.ErrSchemaValidation, e.Key)
				}
			}
		}

		defs = append(defs, domain.AttributeDefinition{
			ID:          e.ID,
			Key:         e.Key,
			OrderNumber: e.OrderNumber,
			Mode:        mode,
			ValueIDs:    e.Values,
		})
	}

	return domain.NewAttributeSchema(defs), nil
}

func parseMode(s string) (domain.AttributeMode, error) {
	switch s {
	case "bitflag":
		return domain.AttributeModeBitflag, nil
	case "one_level":
		return domain.AttributeModeOneLevel, nil
	case "two_level":
		return domain.AttributeModeTwoLevel, nil
	case "number_list":
		return domain.AttributeModeNumberList, nil
	default:
		return 0, fmt.Errorf("unknown attribute mode %q", s)
	}
}
