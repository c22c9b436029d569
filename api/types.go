package api

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// filterRequest is the body POSTed to {base}/{protocol}/position/filter.
type filterRequest struct {
	Pagination pagination    `json:"pagination"`
	Queries    []filterQuery `json:"queries"`
	SortBy     string        `json:"sortBy"`
	SortType   string        `json:"sortType"`
}

type pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type filterQuery struct {
	FieldName string `json:"fieldName"`
	Value     string `json:"value"`
}

// filterResponse wraps one page of position records.
type filterResponse struct {
	Data []rawPosition `json:"data"`
	Meta pageMeta      `json:"meta"`
}

type pageMeta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// rawPosition mirrors the heterogeneous wire shapes the source returns.
// Different protocols populate different direction fields (type, side, isLong),
// and numeric fields sometimes arrive as strings. All of that ambiguity is
// resolved here, at the boundary, and never leaks past normalization.
type rawPosition struct {
	Account       string    `json:"account"`
	IndexToken    string    `json:"indexToken"`
	Size          flexFloat `json:"size"`
	Leverage      flexFloat `json:"leverage"`
	PnL           flexFloat `json:"pnl"`
	Type          string    `json:"type"`
	Side          string    `json:"side"`
	IsLong        *bool     `json:"isLong"`
	OpenBlockTime string    `json:"openBlockTime"`
	Status        string    `json:"status"`
}

// flexFloat accepts both JSON numbers and numeric strings, defaulting to 0
// when the value is missing or unparseable.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}
