package config

import (
	"maps"
	"slices"
)

var Presets = map[string]map[string]*Config{
	"ring": {
		"single": {
			Name: "single ring",
			Sim:  SimConfig{Re: 200, Dt: 0.02, Steps: 200},
			Flow: []FlowConfig{
				{Type: "ring", Normal: Vec{0, 0, 1}, Radius: 1, Circulation: 1, N: 64},
			},
			Measure: []MeasureConfig{
				{Type: "line", Start: Vec{-2, 0, 0}, End: Vec{2, 0, 0}, N: 21},
			},
		},
		"leapfrog": {
			Name: "leapfrogging rings",
			Sim:  SimConfig{Re: 500, Dt: 0.02, Steps: 400},
			Flow: []FlowConfig{
				{Type: "ring", Normal: Vec{0, 0, 1}, Radius: 1, Circulation: 1, N: 64},
				{Type: "ring", Center: Vec{0, 0, 0.4}, Normal: Vec{0, 0, 1}, Radius: 1, Circulation: 1, N: 64},
			},
		},
		"collision": {
			Name: "head-on rings",
			Sim:  SimConfig{Re: 300, Dt: 0.02, Steps: 300},
			Flow: []FlowConfig{
				{Type: "ring", Center: Vec{0, 0, -1.5}, Normal: Vec{0, 0, 1}, Radius: 1, Circulation: 1, N: 64},
				{Type: "ring", Center: Vec{0, 0, 1.5}, Normal: Vec{0, 0, -1}, Radius: 1, Circulation: 1, N: 64},
			},
		},
	},
	"body": {
		"sphere": {
			Name: "sphere in a freestream",
			Sim:  SimConfig{Re: 100, Dt: 0.02, Steps: 100, Freestream: Vec{1, 0, 0}},
			Bodies: []BodyConfig{
				{Name: "sphere", Shape: "ovoid", Scale: Vec{1, 1, 1}, Refine: 2, BCs: 2},
			},
			Measure: []MeasureConfig{
				{Type: "line", Start: Vec{-1.5, -1, 0}, End: Vec{-1.5, 1, 0}, N: 11},
			},
		},
		"cube": {
			Name: "cube in a freestream",
			Sim:  SimConfig{Re: 100, Dt: 0.02, Steps: 100, Freestream: Vec{1, 0, 0}},
			Bodies: []BodyConfig{
				{Name: "cube", Shape: "rect", Scale: Vec{1, 1, 1}, BCs: 2},
			},
		},
		"spinning-plate": {
			Name: "spinning plate",
			Sim:  SimConfig{Re: 100, Dt: 0.01, Steps: 100},
			Bodies: []BodyConfig{
				{Name: "plate", Shape: "quad", Scale: Vec{1, 1, 1}, RotVel: Vec{0, 0, 1}, BCs: 3},
			},
		},
	},
}

func GetPreset(category, preset string) *Config {
	categoryPresets, ok := Presets[category]
	if !ok {
		return nil
	}
	cfg, ok := categoryPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(category string) []string {
	categoryPresets, ok := Presets[category]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(categoryPresets))
}

func Categories() []string {
	return slices.Sorted(maps.Keys(Presets))
}
