package main

import (
	"strings"

	"github.com/yurifrl/achu/pkg/csv"
	"github.com/yurifrl/achu/pkg/executors"
)

type filters struct {
	minAmount float64
	maxAmount float64
	name      string
	kind      string
}

func (f *filters) toFilterFunc() csv.FilterFunc[executors.Item] {
	return func(it executors.Item) bool {
		if f.minAmount != 0 && it.Amount() < f.minAmount {
			return false
		}
		if f.maxAmount != 0 && it.Amount() > f.maxAmount {
			return false
		}
		if f.name != "" && !strings.Contains(strings.ToLower(it.Name()), strings.ToLower(f.name)) {
			return false
		}
		if f.kind != "" && !strings.EqualFold(it.Kind(), f.kind) {
			return false
		}
		return true
	}
}
