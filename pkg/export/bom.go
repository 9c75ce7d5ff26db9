// Package export provides functionality for exporting assembled buildings
// to various file formats.
package export

import (
	"math"
	"sort"

	"github.com/chazu/timberframe/pkg/part"
)

// BOMLine is one row of a bill of materials: every instance of a role that
// shares the same cut size.
type BOMLine struct {
	Role     part.Role `yaml:"role"`
	Template string    `yaml:"template"`
	Length   float64   `yaml:"length"`
	Height   float64   `yaml:"height"`
	Width    float64   `yaml:"width"`
	Count    int       `yaml:"count"`
}

// TotalLength is Length times Count.
func (l BOMLine) TotalLength() float64 {
	return l.Length * float64(l.Count)
}

// bomKey groups instances at millimetre resolution.
type bomKey struct {
	role     part.Role
	template string
	l, h, w  int64
}

func mm(v float64) int64 {
	return int64(math.Round(v * 1000))
}

// BillOfMaterials groups the building's instances by role and scaled size.
// Lines are ordered by role, then by length descending.
func BillOfMaterials(b *part.Building) []BOMLine {
	index := make(map[bomKey]int)
	var lines []BOMLine
	for _, in := range b.Instances() {
		size := in.Template.Size().Mul(in.Transform.Scale)
		line := BOMLine{
			Role:     in.Role,
			Template: in.Template.ID().Geometry,
			Length:   size.X,
			Height:   size.Y,
			Width:    size.Z,
		}
		k := bomKey{in.Role, line.Template, mm(size.X), mm(size.Y), mm(size.Z)}
		if i, ok := index[k]; ok {
			lines[i].Count++
			continue
		}
		line.Count = 1
		index[k] = len(lines)
		lines = append(lines, line)
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Role != lines[j].Role {
			return lines[i].Role < lines[j].Role
		}
		return lines[i].Length > lines[j].Length
	})
	return lines
}
