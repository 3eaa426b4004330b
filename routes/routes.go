package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	config "github.com/phillip/chapter-directory-go/config"
	controllers "github.com/phillip/chapter-directory-go/controllers"
	middleware "github.com/phillip/chapter-directory-go/middleware"
	reports "github.com/phillip/chapter-directory-go/reports"
)

// crud wires the five standard routes of a resource. Writes go through
// write, which is where admin-only resources add their guard.
type crud struct {
	list, create, get, update, remove gin.HandlerFunc
}

func (h crud) mount(g *gin.RouterGroup, write ...gin.HandlerFunc) {
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", append(write, h.create)...)
	g.PATCH("/:id", append(write, h.update)...)
	g.DELETE("/:id", append(write, h.remove)...)
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, engine *reports.Engine) {
	// public
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/auth/register", controllers.Register(cfg))
	r.POST("/auth/login", controllers.Login(cfg))
	r.POST("/auth/refresh", controllers.RefreshToken(cfg))

	// protected
	api := r.Group("")
	api.Use(middleware.AuthMiddleware(cfg))
	admin := middleware.AdminOnly()

	// reports
	api.GET("/chapter-reports", controllers.ChapterReport(cfg, engine))
	api.GET("/chapter-reports/export", controllers.ExportChapterReport(cfg, engine))
	api.GET("/attendance-reports", controllers.AttendanceReport(cfg, engine))

	members := api.Group("/members")
	{
		members.GET("", controllers.ListMembers(cfg))
		members.GET("/:id", controllers.GetMember(cfg))
		members.POST("", admin, controllers.CreateMember(cfg))
		members.PATCH("/:id", controllers.UpdateMember(cfg))
		members.DELETE("/:id", admin, controllers.DeleteMember(cfg))
		members.POST("/:id/profile-picture", controllers.UploadProfilePicture(cfg))
	}

	// directory structure and meetings are admin-managed
	crud{
		controllers.ListCities(cfg), controllers.CreateCity(cfg), controllers.GetCity(cfg),
		controllers.UpdateCity(cfg), controllers.DeleteCity(cfg),
	}.mount(api.Group("/cities"), admin)
	crud{
		controllers.ListChapters(cfg), controllers.CreateChapter(cfg), controllers.GetChapter(cfg),
		controllers.UpdateChapter(cfg), controllers.DeleteChapter(cfg),
	}.mount(api.Group("/chapters"), admin)
	crud{
		controllers.ListMeetings(cfg), controllers.CreateMeeting(cfg), controllers.GetMeeting(cfg),
		controllers.UpdateMeeting(cfg), controllers.DeleteMeeting(cfg),
	}.mount(api.Group("/meetings"), admin)
	crud{
		controllers.ListAttendance(cfg), controllers.RecordAttendance(cfg), controllers.GetAttendance(cfg),
		controllers.UpdateAttendance(cfg), controllers.DeleteAttendance(cfg),
	}.mount(api.Group("/meeting-attendances"), admin)
	crud{
		controllers.ListMemberships(cfg), controllers.CreateMembership(cfg), controllers.GetMembership(cfg),
		controllers.UpdateMembership(cfg), controllers.DeleteMembership(cfg),
	}.mount(api.Group("/memberships"), admin)

	// member-owned records; handlers check ownership
	crud{
		controllers.ListBusinessProfiles(cfg), controllers.CreateBusinessProfile(cfg), controllers.GetBusinessProfile(cfg),
		controllers.UpdateBusinessProfile(cfg), controllers.DeleteBusinessProfile(cfg),
	}.mount(api.Group("/business-profiles"))
	crud{
		controllers.ListExchanges(cfg), controllers.CreateExchange(cfg), controllers.GetExchange(cfg),
		controllers.UpdateExchange(cfg), controllers.DeleteExchange(cfg),
	}.mount(api.Group("/business-exchanges"))
	crud{
		controllers.ListReferences(cfg), controllers.CreateReference(cfg), controllers.GetReference(cfg),
		controllers.UpdateReference(cfg), controllers.DeleteReference(cfg),
	}.mount(api.Group("/reference-passes"))
	crud{
		controllers.ListPersonalMeetings(cfg), controllers.CreatePersonalMeeting(cfg), controllers.GetPersonalMeeting(cfg),
		controllers.UpdatePersonalMeeting(cfg), controllers.DeletePersonalMeeting(cfg),
	}.mount(api.Group("/personal-meetings"))
	crud{
		controllers.ListEvents(cfg), controllers.CreateEvent(cfg), controllers.GetEvent(cfg),
		controllers.UpdateEvent(cfg), controllers.DeleteEvent(cfg),
	}.mount(api.Group("/events"))
	crud{
		controllers.ListPortfolios(cfg), controllers.CreatePortfolio(cfg), controllers.GetPortfolio(cfg),
		controllers.UpdatePortfolio(cfg), controllers.DeletePortfolio(cfg),
	}.mount(api.Group("/business-portfolios"))
}
