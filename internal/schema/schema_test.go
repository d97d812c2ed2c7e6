package schema

import (
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMovie struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	PosterPath *string `json:"poster_path" nullable:"true"`
	Adult      bool    `json:"adult"`
}

type testPage struct {
	Page    int         `json:"page"`
	Results []testMovie `json:"results"`
}

type strictMovie struct {
	ID int `json:"id"`
}

func decode(t *testing.T, raw string) any {
	t.Helper()
	var payload any
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestValidate_Conforming(t *testing.T) {
	s := For[testPage]("MoviePage")

	payload := decode(t, `{
		"page": 1,
		"results": [
			{"id": 438631, "title": "Dune", "poster_path": "/abc.jpg", "adult": false}
		]
	}`)

	assert.Nil(t, s.Validate(payload))
}

func TestValidate_NullableField(t *testing.T) {
	s := For[testPage]("MoviePage")

	payload := decode(t, `{
		"page": 1,
		"results": [
			{"id": 1, "title": "Unreleased", "poster_path": null, "adult": false}
		]
	}`)

	assert.Nil(t, s.Validate(payload))
}

func TestValidate_WrongTypeReportsPath(t *testing.T) {
	s := For[testPage]("MoviePage")

	payload := decode(t, `{
		"page": 1,
		"results": [
			{"id": "not-a-number", "title": "Dune", "poster_path": null, "adult": false}
		]
	}`)

	violations := s.Validate(payload)
	require.NotEmpty(t, violations)

	var paths []string
	for _, v := range violations {
		paths = append(paths, v.Path)
	}
	assert.Contains(t, paths, "results[0].id")
}

func TestValidate_MissingRequiredField(t *testing.T) {
	s := For[testPage]("MoviePage")

	payload := decode(t, `{"page": 1, "results": [{"id": 7, "poster_path": null, "adult": true}]}`)

	violations := s.Validate(payload)
	require.NotEmpty(t, violations)
	assert.Contains(t, violations[0].String(), "title")
}

func TestValidate_NoBooleanCoercion(t *testing.T) {
	s := For[testPage]("MoviePage")

	payload := decode(t, `{
		"page": 1,
		"results": [
			{"id": 7, "title": "Dune", "poster_path": null, "adult": 1}
		]
	}`)

	assert.NotEmpty(t, s.Validate(payload))
}

func TestValidate_UnknownFieldsTolerated(t *testing.T) {
	s := For[testPage]("MoviePage")

	payload := decode(t, `{
		"page": 1,
		"total_results": 9000,
		"results": [
			{"id": 7, "title": "Dune", "poster_path": null, "adult": false, "video": false}
		]
	}`)

	assert.Nil(t, s.Validate(payload))
}

func TestForStrict_RejectsUnknownFields(t *testing.T) {
	s := ForStrict[strictMovie]("StrictMovie")

	assert.Nil(t, s.Validate(decode(t, `{"id": 1}`)))
	assert.NotEmpty(t, s.Validate(decode(t, `{"id": 1, "surprise": true}`)))
}

func TestFor_CachesPerType(t *testing.T) {
	a := For[testPage]("MoviePage")
	b := For[testPage]("MoviePage")
	assert.Same(t, a, b)
}
