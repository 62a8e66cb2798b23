package model

import (
	"testing"

	perrors "github.com/abgdnv/cloudshop/internal/product/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImportRecord(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected ImportRecord
		errMsg   string
	}{
		{
			name:     "valid record",
			body:     `{"title":"Shoe","description":"D","price":10,"count":3}`,
			expected: ImportRecord{Title: "Shoe", Description: "D", Price: 10, Count: 3},
		},
		{
			name:     "zero count is allowed",
			body:     `{"title":"Shoe","description":"D","price":0.5,"count":0}`,
			expected: ImportRecord{Title: "Shoe", Description: "D", Price: 0.5, Count: 0},
		},
		{name: "missing title", body: `{"description":"D","price":10,"count":3}`, errMsg: MsgTitleRequired},
		{name: "blank title", body: `{"title":"   ","description":"D","price":10,"count":3}`, errMsg: MsgTitleRequired},
		{name: "title is not a string", body: `{"title":5,"description":"D","price":10,"count":3}`, errMsg: MsgTitleRequired},
		{name: "empty description", body: `{"title":"Shoe","description":"","price":10,"count":3}`, errMsg: MsgDescriptionRequired},
		{name: "missing price", body: `{"title":"Shoe","description":"D","count":3}`, errMsg: MsgPriceInvalid},
		{name: "zero price", body: `{"title":"Shoe","description":"D","price":0,"count":3}`, errMsg: MsgPriceInvalid},
		{name: "price is a string", body: `{"title":"Shoe","description":"D","price":"10","count":3}`, errMsg: MsgPriceInvalid},
		{name: "negative count", body: `{"title":"Shoe","description":"D","price":10,"count":-1}`, errMsg: MsgCountInvalid},
		{name: "fractional count", body: `{"title":"Shoe","description":"D","price":10,"count":1.5}`, errMsg: MsgCountInvalid},
		{name: "title reported before price", body: `{"price":-1}`, errMsg: MsgTitleRequired},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			record, err := DecodeImportRecord([]byte(tc.body))

			// then
			if tc.errMsg != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, perrors.ErrInvalidInput)
				var vErr *perrors.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tc.errMsg, vErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, record)
		})
	}
}

func TestDecodeImportRecord_NotJSON(t *testing.T) {
	// when
	_, err := DecodeImportRecord([]byte("title=Shoe"))

	// then
	assert.ErrorIs(t, err, perrors.ErrInvalidInput)
}
