package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

type operationDoc struct {
	method  string
	path    string
	summary string
	request interface{}
	ok      interface{}
	errors  []int
	secured bool
}

var operationDocs = []operationDoc{
	{http.MethodPost, "/api/auth/register", "Register an account", registerRequest{}, authResponse{}, []int{http.StatusBadRequest, http.StatusConflict}, false},
	{http.MethodPost, "/api/auth/login", "Log in with email or username", loginRequest{}, authResponse{}, []int{http.StatusBadRequest, http.StatusUnauthorized}, false},
	{http.MethodGet, "/api/user/profile", "Current user profile", nil, profileResponse{}, nil, true},
	{http.MethodPut, "/api/user/profile", "Update username, theme or birthday", profileRequest{}, profileResponse{}, []int{http.StatusBadRequest, http.StatusConflict}, true},
	{http.MethodPut, "/api/user/password", "Change password", passwordRequest{}, MessageResponse{}, []int{http.StatusBadRequest}, true},
	{http.MethodDelete, "/api/user/account", "Delete account and all data", nil, MessageResponse{}, nil, true},
	{http.MethodGet, "/api/data/userdata", "Points, streak and deed history", nil, userDataResponse{}, []int{http.StatusServiceUnavailable}, true},
	{http.MethodPut, "/api/data/userdata", "Patch progress (optional version check)", userDataRequest{}, userDataResponse{}, []int{http.StatusBadRequest, http.StatusConflict}, true},
	{http.MethodGet, "/api/data/leaderboard", "Leaderboard", nil, leaderboardResponse{}, nil, false},
	{http.MethodGet, "/api/data/community", "Deeds shared with a photo", nil, communityResponse{}, nil, false},
	{http.MethodPost, "/api/likes/toggle", "Like or unlike a community entry", toggleLikeRequest{}, toggleLikeResponse{}, []int{http.StatusBadRequest}, true},
	{http.MethodPost, "/api/likes/status", "Like status for entries", entryIDsDoc{}, likeStatusResponse{}, []int{http.StatusBadRequest}, true},
	{http.MethodPost, "/api/likes/counts", "Like counts for entries", entryIDsDoc{}, likeCountsResponse{}, []int{http.StatusBadRequest}, false},
	{http.MethodPost, "/api/contact", "Send a contact message", contactDoc{}, MessageResponse{}, []int{http.StatusBadRequest}, false},
	{http.MethodGet, "/api/zodiac", "Zodiac insights", nil, zodiacResponse{}, nil, false},
	{http.MethodGet, "/api/deed/today", "Today's encoded deed", nil, challengeResponse{}, []int{http.StatusServiceUnavailable}, true},
	{http.MethodPost, "/api/deed/solve", "Submit a decoded deed", solveRequest{}, solveResponse{}, []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict}, true},
	{http.MethodPost, "/api/uploads/image", "Upload a deed photo (multipart field image)", nil, uploadResponse{}, []int{http.StatusBadRequest}, true},
	{http.MethodGet, "/api/puzzles/bottle/today", "Today's bottle puzzle", nil, bottleTodayResponse{}, nil, false},
	{http.MethodPost, "/api/puzzles/bottle/guess", "Submit a bottle order", bottleGuessRequest{}, bottleGuessResponse{}, []int{http.StatusBadRequest, http.StatusConflict}, false},
	{http.MethodGet, "/api/puzzles/numeric/today", "Today's numeric puzzle", nil, numericTodayResponse{}, nil, false},
	{http.MethodPost, "/api/puzzles/numeric/guess", "Submit a numeric guess", numericGuessRequest{}, numericGuessResponse{}, []int{http.StatusBadRequest, http.StatusConflict}, false},
	{http.MethodGet, "/api/games/{game}/stats", "Mini-game statistics", nil, gameStatsResponse{}, []int{http.StatusNotFound}, true},
	{http.MethodGet, "/api/health", "Health check", nil, HealthResponse{}, nil, false},
}

type contactDoc struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type gamePathDoc struct {
	Game string `path:"game" enum:"bottle,numeric"`
}

func newOpenAPISpec() (*openapi3.Spec, error) {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Decode It API"
	r.Spec.Info.Version = "1.0.0"
	r.Spec.Info.WithDescription("Zodiac good-deed cipher game backend.")

	for _, doc := range operationDocs {
		op, err := r.NewOperationContext(doc.method, doc.path)
		if err != nil {
			return nil, err
		}
		op.SetSummary(doc.summary)
		if doc.secured {
			op.SetDescription("Requires Authorization: Bearer <token>.")
		}
		if doc.path == "/api/games/{game}/stats" {
			op.AddReqStructure(gamePathDoc{})
		}
		if doc.request != nil {
			op.AddReqStructure(doc.request)
		}
		op.AddRespStructure(doc.ok, openapi.WithHTTPStatus(http.StatusOK))
		if doc.secured {
			op.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
		}
		for _, status := range doc.errors {
			op.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(status))
		}
		op.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
		if err := r.AddOperation(op); err != nil {
			return nil, err
		}
	}
	return r.Spec, nil
}

func mustOpenAPIDocument() []byte {
	spec, err := newOpenAPISpec()
	if err != nil {
		panic(err)
	}
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		panic(err)
	}
	return data
}

// OpenAPI 输出接口文档
func (a *API) OpenAPI(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", a.openapi)
}
