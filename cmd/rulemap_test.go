package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/comps-cli/internal/model"
)

func TestParseRuleMap_Empty(t *testing.T) {
	m, err := parseRuleMap("")
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestParseRuleMap_Shorthand(t *testing.T) {
	m, err := parseRuleMap("1,2,3,2,1")
	require.NoError(t, err)
	assert.Equal(t, map[model.Category]int{
		model.CategoryAptOfficetel:           1,
		model.CategoryRowhouseMulti:          2,
		model.CategoryRetailOfficeAptFactory: 3,
		model.CategoryPlantWarehouseEtc:      2,
		model.CategoryOtherBig:               1,
	}, m)
}

func TestParseRuleMap_ShorthandWithSpaces(t *testing.T) {
	m, err := parseRuleMap(" 1 , 2 , 3 , 2 , 1 ")
	require.NoError(t, err)
	assert.Len(t, m, 5)
	assert.Equal(t, 3, m[model.CategoryRetailOfficeAptFactory])
}

func TestParseRuleMap_KeyValue(t *testing.T) {
	m, err := parseRuleMap("APT_OFFICETEL=2,OTHER_BIG:3; PLANT_WAREHOUSE_ETC=1")
	require.NoError(t, err)
	assert.Equal(t, map[model.Category]int{
		model.CategoryAptOfficetel:      2,
		model.CategoryOtherBig:          3,
		model.CategoryPlantWarehouseEtc: 1,
	}, m)
}

func TestParseRuleMap_UnknownCategory(t *testing.T) {
	_, err := parseRuleMap("NOT_A_CATEGORY=1")
	assert.Error(t, err)
}

func TestParseRuleMap_BadIndex(t *testing.T) {
	_, err := parseRuleMap("APT_OFFICETEL=abc")
	assert.Error(t, err)
}

func TestParseRuleMap_MissingSeparator(t *testing.T) {
	_, err := parseRuleMap("APT_OFFICETEL")
	assert.Error(t, err)
}
