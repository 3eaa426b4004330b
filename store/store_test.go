package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/chapter-directory-go/models"
	reports "github.com/phillip/chapter-directory-go/reports"
)

func TestScope(t *testing.T) {
	assert.Equal(t, bson.M{}, Scope[models.Member](nil))
	assert.Equal(t, bson.M{"role": "admin"}, Scope[models.Member](bson.M{"role": "admin"}))

	active := models.City{}.ActiveFilter()
	assert.Equal(t, active, Scope[models.City](nil))
	assert.Equal(t, bson.M{"$and": bson.A{bson.M{"name": "Pune"}, active}}, Scope[models.City](bson.M{"name": "Pune"}))
}

func TestContainsQuotesPattern(t *testing.T) {
	assert.Equal(t, bson.M{"$regex": `a\.b\*`, "$options": "i"}, Contains("a.b*"))
}

func TestBetween(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	assert.Equal(t, bson.M{"$gte": start, "$lte": end}, Between(start, end))
}

func TestProfileSort(t *testing.T) {
	id := bson.D{{Key: "_id", Value: 1}}

	assert.Equal(t, id, profileSort(reports.ProfileQuery{}))
	assert.Equal(t, id, profileSort(reports.ProfileQuery{Sort: reports.SortBusinessGiven, Desc: true}))
	assert.Equal(t,
		bson.D{{Key: "city_name", Value: -1}, {Key: "_id", Value: 1}},
		profileSort(reports.ProfileQuery{Sort: reports.SortCity, Desc: true}))
}

func TestProfilePipelineFilters(t *testing.T) {
	base := profilePipeline(reports.ProfileQuery{})

	filtered := profilePipeline(reports.ProfileQuery{City: "pu", Chapter: "ti"})
	require.Len(t, filtered, len(base)+1)
	assert.Equal(t,
		bson.D{{Key: "$match", Value: bson.M{"city_name": Contains("pu"), "chapter_name": Contains("ti")}}},
		filtered[len(filtered)-1])

	cityOnly := profilePipeline(reports.ProfileQuery{City: "pu"})
	assert.Equal(t,
		bson.D{{Key: "$match", Value: bson.M{"city_name": Contains("pu")}}},
		cityOnly[len(cityOnly)-1])
}

func TestLookupNameScopesActive(t *testing.T) {
	stage := lookupName[models.Chapter]("chapter_id", "chapter")
	lookup := stage[0].Value.(bson.M)

	assert.Equal(t, models.Chapter{}.CollectionName(), lookup["from"])
	assert.Equal(t, bson.M{"ref": "$chapter_id"}, lookup["let"])

	match := lookup["pipeline"].(bson.A)[0].(bson.M)["$match"].(bson.M)
	assert.Contains(t, match, "$and")
}

func TestToDecimal(t *testing.T) {
	d, err := primitive.ParseDecimal128("1250.50")
	require.NoError(t, err)
	assert.Equal(t, "1250.50", toDecimal(d).StringFixed(2))

	assert.True(t, toDecimal(primitive.Decimal128{}).IsZero())
}

func TestIndexesCoverReportJoins(t *testing.T) {
	for _, name := range []string{
		models.Member{}.CollectionName(),
		models.MeetingAttendance{}.CollectionName(),
		models.BusinessExchange{}.CollectionName(),
	} {
		assert.NotEmpty(t, indexes[name], name)
	}
}
