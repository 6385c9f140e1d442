package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestIndexModels(t *testing.T) {
	models := indexModels()

	var keys []bson.D
	for _, model := range models {
		keys = append(keys, model.Keys.(bson.D))
	}

	assert.Equal(t, []bson.D{
		{{Key: "ingestedat", Value: 1}},
		{{Key: "trip_id", Value: 1}, {Key: "ingestedat", Value: -1}},
		{{Key: "route_id", Value: 1}, {Key: "ingestedat", Value: -1}},
		{{Key: "route_short_name", Value: 1}, {Key: "ingestedat", Value: -1}},
	}, keys)
}
