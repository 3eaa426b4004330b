package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	auth "github.com/phillip/chapter-directory-go/auth"
	config "github.com/phillip/chapter-directory-go/config"
	models "github.com/phillip/chapter-directory-go/models"
	store "github.com/phillip/chapter-directory-go/store"
)

// The cases below are all rejected before any store access, so the config
// carries no mongo client.
func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "access-secret",
		JWTRefreshSecret: "refresh-secret",
		JWTAccessExpiry:  time.Minute,
		JWTRefreshExpiry: time.Hour,
		Logger:           zap.NewNop(),
	}
}

func as(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func call(h gin.HandlerFunc, method, route, path, body string, mw ...gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, route, append(mw, h)...)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestValidationErrorsNameTheField(t *testing.T) {
	cfg := testConfig()
	self := primitive.NewObjectID().Hex()
	member := as(self, models.RoleMember)

	cases := []struct {
		name    string
		handler gin.HandlerFunc
		method  string
		route   string
		path    string
		body    string
		want    string
	}{
		{"city name required", CreateCity(cfg), http.MethodPost, "/cities", "/cities", `{}`, "Name"},
		{"city status enum", CreateCity(cfg), http.MethodPost, "/cities", "/cities", `{"name":"Pune","status":"gone"}`, "Status"},
		{"chapter city id", CreateChapter(cfg), http.MethodPost, "/chapters", "/chapters", `{"name":"Titans","city_id":"nope"}`, "invalid city_id"},
		{"meeting date", CreateMeeting(cfg), http.MethodPost, "/meetings", "/meetings", `{"title":"Weekly","date":"13/05/2026","chapter_id":"` + self + `"}`, "invalid date format"},
		{"attendance status", RecordAttendance(cfg), http.MethodPost, "/meeting-attendances", "/meeting-attendances", `{"meeting_id":"` + self + `","member_id":"` + self + `","status":"late"}`, "Status"},
		{"exchange amount", CreateExchange(cfg), http.MethodPost, "/business-exchanges", "/business-exchanges", `{"to_member":"` + self + `","amount":"12.345"}`, "amount at most two decimal places"},
		{"exchange negative", CreateExchange(cfg), http.MethodPost, "/business-exchanges", "/business-exchanges", `{"to_member":"` + self + `","amount":"-1"}`, "amount must not be negative"},
		{"membership window", CreateMembership(cfg), http.MethodPost, "/memberships", "/memberships", `{"user_id":"` + self + `","plan":"gold","amount":"100","start_date":"2026-06-01","end_date":"2026-05-01"}`, "end_date must be after start_date"},
		{"membership amount", CreateMembership(cfg), http.MethodPost, "/memberships", "/memberships", `{"user_id":"` + self + `","plan":"gold","amount":"lots","start_date":"2026-06-01","end_date":"2027-05-01"}`, "amount must be a number"},
		{"profile website", CreateBusinessProfile(cfg), http.MethodPost, "/business-profiles", "/business-profiles", `{"business_name":"Rao","website":"not a url","city_id":"x","chapter_id":"y"}`, "Website"},
		{"profile city id", CreateBusinessProfile(cfg), http.MethodPost, "/business-profiles", "/business-profiles", `{"business_name":"Rao","city_id":"x","chapter_id":"y"}`, "invalid city_id"},
		{"bad path id", GetCity(cfg), http.MethodGet, "/cities/:id", "/cities/123", ``, "invalid city id"},
		{"bad list ref", ListChapters(cfg), http.MethodGet, "/chapters", "/chapters?city_id=zzz", ``, "invalid city_id"},
		{"bad member ref", ListExchanges(cfg), http.MethodGet, "/business-exchanges", "/business-exchanges?member_id=zzz", ``, "invalid member_id"},
		{"bad meeting window", ListMeetings(cfg), http.MethodGet, "/meetings", "/meetings?from=yesterday", ``, "invalid from date"},
		{"empty update", UpdateCity(cfg), http.MethodPatch, "/cities/:id", "/cities/" + self, `{}`, "no fields to update"},
		{"register email", Register(cfg), http.MethodPost, "/auth/register", "/auth/register", `{"first_name":"A","email":"nope","password":"longenough"}`, "Email"},
		{"register password", Register(cfg), http.MethodPost, "/auth/register", "/auth/register", `{"first_name":"A","email":"a@b.co","password":"short"}`, "Password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := call(tc.handler, tc.method, tc.route, tc.path, tc.body, member)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tc.want)
		})
	}
}

func TestMembersCannotActForOthers(t *testing.T) {
	cfg := testConfig()
	self := primitive.NewObjectID().Hex()
	other := primitive.NewObjectID().Hex()
	member := as(self, models.RoleMember)

	w := call(UpdateMember(cfg), http.MethodPatch, "/members/:id", "/members/"+other, `{"first_name":"X"}`, member)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(UpdateMember(cfg), http.MethodPatch, "/members/:id", "/members/"+self, `{"role":"admin"}`, member)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(UploadProfilePicture(cfg), http.MethodPost, "/members/:id/profile-picture", "/members/"+other+"/profile-picture", ``, member)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(CreateReference(cfg), http.MethodPost, "/reference-passes", "/reference-passes", `{"from_member":"`+other+`","to_member":"`+self+`"}`, member)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(CreateBusinessProfile(cfg), http.MethodPost, "/business-profiles", "/business-profiles",
		`{"user_id":"`+other+`","business_name":"Rao","city_id":"`+self+`","chapter_id":"`+self+`"}`, member)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSelfReferralRejected(t *testing.T) {
	cfg := testConfig()
	self := primitive.NewObjectID().Hex()

	w := call(CreatePersonalMeeting(cfg), http.MethodPost, "/personal-meetings", "/personal-meetings",
		`{"visitor_member":"`+self+`"}`, as(self, models.RoleMember))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "visitor_member must differ from host_member")
}

func TestMissingIdentity(t *testing.T) {
	cfg := testConfig()

	w := call(CreateEvent(cfg), http.MethodPost, "/events", "/events", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshToken(t *testing.T) {
	cfg := testConfig()

	w := call(RefreshToken(cfg), http.MethodPost, "/auth/refresh", "/auth/refresh", `{"refresh_token":"garbage"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, refresh, err := auth.GenerateTokenPair(cfg, primitive.NewObjectID().Hex(), "a@b.co", models.RoleMember)
	require.NoError(t, err)

	w = call(RefreshToken(cfg), http.MethodPost, "/auth/refresh", "/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestQueryFilter(t *testing.T) {
	cityID := primitive.NewObjectID()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/chapters?q=ti.ans&city_id="+cityID.Hex(), nil)

	filter, err := queryFilter(c, []string{"name"}, "city_id")
	require.NoError(t, err)
	assert.Equal(t, bson.M{
		"$or":     bson.A{bson.M{"name": store.Contains("ti.ans")}},
		"city_id": cityID,
	}, filter)
}

func TestWriteListETag(t *testing.T) {
	older := models.City{ID: primitive.NewObjectID(), Name: "Pune", UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := models.City{ID: primitive.NewObjectID(), Name: "Mumbai", UpdatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}

	r := gin.New()
	r.GET("/cities", func(c *gin.Context) { writeList(c, []models.City{older, newer}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cities", nil))
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	assert.Contains(t, etag, newer.ID.Hex())
	assert.Equal(t, "Sun, 01 Feb 2026 00:00:00 GMT", w.Header().Get("Last-Modified"))

	req := httptest.NewRequest(http.MethodGet, "/cities", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}
