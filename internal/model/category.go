package model

import "slices"

// DefaultCategories is the stock category list
var DefaultCategories = []string{
	"3D",
	"Action",
	"Adventure",
	"Board",
	"Card",
	"Driving",
	"Educational",
	"Fashion",
	"Fighting",
	"Horror",
	"Puzzle",
	"Shooting",
	"Simulator",
	"Sports",
	"Strategy",
}

// Categories is the fixed set of categories a game may be filed under
type Categories []string

// Contains reports whether name is an exact member of the set
func (c Categories) Contains(name string) bool {
	return slices.Contains(c, name)
}
