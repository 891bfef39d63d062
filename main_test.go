package main

import (
	"github.com/paulmach/orb"
	"snapindex/util"
	"testing"
)

func TestParseExtent(t *testing.T) {
	// Act
	extent, err := parseExtent("1, 2.5,-3,4")

	// Assert
	util.AssertNotNil(t, err)
	util.AssertNil(t, extent)

	// Act
	extent, err = parseExtent("-3,2.5, 1,4")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, &orb.Bound{Min: orb.Point{-3, 2.5}, Max: orb.Point{1, 4}}, extent)
}

func TestParseExtent_empty(t *testing.T) {
	// Act
	extent, err := parseExtent(" ")

	// Assert
	util.AssertNil(t, err)
	util.AssertNil(t, extent)
}

func TestParseExtent_invalid(t *testing.T) {
	testCases := []string{
		"1,2,3",
		"1,2,3,4,5",
		"1,a,3,4",
	}

	for _, testCase := range testCases {
		t.Run(testCase, func(t *testing.T) {
			// Act
			extent, err := parseExtent(testCase)

			// Assert
			util.AssertNotNil(t, err)
			util.AssertNil(t, extent)
		})
	}
}
