package rest

import (
	"crypto/subtle"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/trusthire/trusthire/internal/domain"
	"github.com/trusthire/trusthire/internal/infra/storage"
	"github.com/trusthire/trusthire/internal/present/rest/presenter"
	"github.com/trusthire/trusthire/internal/service"
	"github.com/trusthire/trusthire/internal/usecase"
)

type Handler struct {
	auth           *service.AuthService
	payments       *service.PaymentService
	signal         *service.SignalService
	jobs           *usecase.JobUsecase
	applications   *usecase.ApplicationUsecase
	profiles       *usecase.ProfileUsecase
	ratings        *usecase.RatingUsecase
	callbackSecret string
}

func NewHandler(
	auth *service.AuthService,
	payments *service.PaymentService,
	signal *service.SignalService,
	jobs *usecase.JobUsecase,
	applications *usecase.ApplicationUsecase,
	profiles *usecase.ProfileUsecase,
	ratings *usecase.RatingUsecase,
	callbackSecret string,
) *Handler {
	return &Handler{
		auth:           auth,
		payments:       payments,
		signal:         signal,
		jobs:           jobs,
		applications:   applications,
		profiles:       profiles,
		ratings:        ratings,
		callbackSecret: callbackSecret,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/auth/signup", h.handleSignUp)
	e.POST("/api/v1/auth/signin", h.handleSignIn)
	e.POST("/api/v1/auth/signout", h.handleSignOut)
	e.GET("/api/v1/auth/me", h.handleMe)

	e.GET("/api/v1/jobs", h.handleListJobs)
	e.POST("/api/v1/jobs", h.handleCreateJob)
	e.GET("/api/v1/jobs/:id", h.handleGetJob)
	e.PATCH("/api/v1/jobs/:id/active", h.handleSetJobActive)
	e.POST("/api/v1/jobs/:id/applications", h.handleApply)

	e.GET("/api/v1/applications", h.handleListApplications)
	e.PATCH("/api/v1/applications/:id/status", h.handleUpdateApplicationStatus)

	e.POST("/api/v1/payments/:id/confirm", h.handleConfirmPayment)
	e.POST("/api/v1/payments/:id/fail", h.handleFailPayment)

	e.GET("/api/v1/users/:id", h.handleGetProfile)
	e.PATCH("/api/v1/me", h.handleUpdateProfile)
	e.POST("/api/v1/me/resume", h.handleUploadResume)
	e.GET("/api/v1/me/resume", h.handleResumeURL)

	e.POST("/api/v1/ratings", h.handleRate)
	e.GET("/api/v1/users/:id/ratings", h.handleListRatings)
	e.GET("/api/v1/reputation/:address", h.handleReputation)

	e.GET("/realtime", h.handleRealtime)
}

// requester pulls the authenticated identity out of the request
// context. ok is false for anonymous requests.
func requester(c echo.Context) (uuid.UUID, domain.Role, bool) {
	ctx := c.Request().Context()
	id, ok := ctx.Value(domain.RequesterIDCtxKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, "", false
	}
	role, ok := ctx.Value(domain.RequesterRoleCtxKey).(domain.Role)
	if !ok {
		return uuid.Nil, "", false
	}
	return id, role, true
}

type signUpRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	CompanyName string `json:"companyName"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *Handler) handleSignUp(c echo.Context) error {
	ctx := c.Request().Context()

	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	user, token, err := h.auth.SignUp(ctx, service.SignUpInput{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		Role:        domain.Role(req.Role),
		CompanyName: req.CompanyName,
	})
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.Created(c, sessionResponse{Token: token, User: user})
}

type signInRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h *Handler) handleSignIn(c echo.Context) error {
	ctx := c.Request().Context()

	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	user, token, err := h.auth.SignIn(ctx, req.Login, req.Password)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, sessionResponse{Token: token, User: user})
}

func (h *Handler) handleSignOut(c echo.Context) error {
	if err := h.auth.SignOut(c.Request().Context(), bearerToken(c)); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleMe(c echo.Context) error {
	user, err := h.auth.Me(c.Request().Context(), bearerToken(c))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, user)
}

type createJobRequest struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	SalaryRange    string    `json:"salaryRange"`
	EmploymentType string    `json:"employmentType"`
	Skills         []string  `json:"skills"`
	Deadline       time.Time `json:"deadline"`
	Tier           string    `json:"tier"`
}

func (h *Handler) handleCreateJob(c echo.Context) error {
	ctx := c.Request().Context()

	callerID, role, ok := requester(c)
	if !ok {
		return presenter.Error(c, domain.ErrUnauthenticated)
	}

	var req createJobRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.jobs.Create(ctx, callerID, role, usecase.CreateJobInput{
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		SalaryRange:    req.SalaryRange,
		EmploymentType: domain.EmploymentType(req.EmploymentType),
		Skills:         req.Skills,
		Deadline:       req.Deadline,
		Tier:           domain.Tier(req.Tier),
	})
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.Created(c, result)
}

// handleListJobs serves two mutually exclusive modes: ?mine=true
// returns the calling employer's postings in any state, everything
// else gets the public board of active postings.
func (h *Handler) handleListJobs(c echo.Context) error {
	ctx := c.Request().Context()

	if c.QueryParam("mine") == "true" {
		callerID, role, ok := requester(c)
		if !ok {
			return presenter.Error(c, domain.ErrUnauthenticated)
		}
		jobs, err := h.jobs.ListMine(ctx, callerID, role)
		if err != nil {
			return presenter.Error(c, err)
		}
		return presenter.OK(c, jobs)
	}

	jobs, err := h.jobs.ListPublic(ctx)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, jobs)
}

func (h *Handler) handleGetJob(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid job id")
	}

	job, err := h.jobs.Get(c.Request().Context(), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, job)
}

func (h *Handler) handleSetJobActive(c echo.Context) error {
	callerID, _, ok := requester(c)
	if !ok {
		return presenter.Error(c, domain.ErrUnauthenticated)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid job id")
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	if err := h.jobs.SetActive(c.Request().Context(), callerID, id, req.Active); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

type applyRequest struct {
	CoverLetter string `json:"coverLetter"`
	ResumeKey   string `json:"resumeKey"`
}

func (h *Handler) handleApply(c echo.Context) error {
	callerID, role, ok := requester(c)
	if !ok {
		return presenter.Error(c, domain.ErrUnauthenticated)
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid job id")
	}

	var req applyRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	app, err := h.applications.Apply(c.Request().Context(), callerID, role, jobID, req.CoverLetter, req.ResumeKey)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, app)
}

// handleListApplications returns the employer's inbox across all owned
// postings, or the seeker's own applications, depending on role.
func (h *Handler) handleListApplications(c echo.Context) error {
	ctx := c.Request().Context()

	callerID, role, ok := requester(c)
	if !ok {
		return presenter.Error(c, domain.ErrUnauthenticated)
	}

	var (
		apps []domain.Application
		err  error
	)
	if role == domain.RoleEmployer {
		apps, err = h.applications.ListForEmployer(ctx, callerID, role)
	} else {
		apps, err = h.applications.ListForSeeker(ctx, callerID)
	}
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, apps)
}

type statusChangeRequest struct {
	Status        string     `json:"status"`
	InterviewDate *time.Time `json:"interviewDate"`
	Notes         string     `json:"notes"`
}

func (h *Handler) handleUpdateApplicationStatus(c echo.Context) error {
	callerID, _, ok := requester(c)
	if !ok {
		return presenter.Error(c, domain.ErrUnauthenticated)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid application id")
	}

	var req statusChangeRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	app, err := h.applications.UpdateStatus(c.Request().Context(), callerID, id, domain.StatusChange{
		Status:        domain.ApplicationStatus(req.Status),
		InterviewDate: req.InterviewDate,
		Notes:         req.Notes,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, app)
}

// providerAuthorized checks the shared-secret header the payment
// provider sends with its callbacks. Payment state never moves on a
// client request.
func (h *Handler) providerAuthorized(c echo.Context) bool {
	got := c.Request().Header.Get("X-Provider-Secret")
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.callbackSecret)) == 1
}

type providerCallback struct {
	ProviderRef string `json:"providerRef"`
}

func (h *Handler) handleConfirmPayment(c echo.Context) error {
	if !h.providerAuthorized(c) {
		return presenter.Error(c, domain.ErrForbidden)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid intent id")
	}

	var req providerCallback
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	intent, err := h.payments.Confirm(c.Request().Context(), id, req.ProviderRef)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, intent)
}

func (h *Handler) handleFailPayment(c echo.Context) error {
	if !h.providerAuthorized(c) {
		return presenter.Error(c, domain.ErrForbidden)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid intent id")
	}

	var req providerCallback
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	intent, err := h.payments.Fail(c.Request().Context(), id, req.ProviderRef)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, intent)
}

func (h *Handler) handleGetProfile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid user id")
	}

	user, err := h.profiles.Get(c.Request().Context(), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, user)
}

type profileUpdateRequest struct {
	CompanyName   *string             `json:"companyName"`
	DID           *string             `json:"did"`
	WalletAddress *string             `json:"walletAddress"`
	ResumeKey     *string             `json:"resumeKey"`
	Credentials   []domain.Credential `json:"credentials"`
}

func (h *Handler) handleUpdateProfile(c echo.Context) error {
	callerID, _, ok := requester(c)
	if !ok {
		return presenter.Error(c, domain.ErrUnauthenticated)
	}

	var req profileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	user, err := h.profiles.Update(c.Request().Context(), callerID, domain.ProfileUpdate{
		CompanyName:   req.CompanyName,
		DID:           req.DID,
		WalletAddress: req.WalletAddress,
		ResumeKey:     req.ResumeKey,
		Credentials:   req.Credentials,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, user)
}

func (h *Handler) handleUploadResume(c echo.Context) error {
	callerID, _, ok := requester(c)
	if !ok {
		return presenter.Error(c, domain.ErrUnauthenticated)
	}

	file, err := c.FormFile("resume")
	if err != nil {
		return presenter.BadRequestMessage(c, "resume file is required")
	}
	if file.Size > storage.MaxResumeSize {
		return presenter.Error(c, domain.ValidationError{Field: "resume", Reason: "file exceeds the 5MB limit"})
	}

	src, err := file.Open()
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, storage.MaxResumeSize+1))
	if err != nil {
		return presenter.Error(c, err)
	}

	key, err := h.profiles.UploadResume(c.Request().Context(), data)
	if err != nil {
		return presenter.Error(c, err)
	}

	resumeKey := key
	if _, err := h.profiles.Update(c.Request().Context(), callerID, domain.ProfileUpdate{ResumeKey: &resumeKey}); err != nil {
		return presenter.Error(c, err)
	}

	return presenter.Created(c, echo.Map{"key": key})
}

func (h *Handler) handleResumeURL(c echo.Context) error {
	callerID, _, ok := requester(c)
	if !ok {
		return presenter.Error(c, domain.ErrUnauthenticated)
	}

	user, err := h.profiles.Get(c.Request().Context(), callerID)
	if err != nil {
		return presenter.Error(c, err)
	}

	url, err := h.profiles.ResumeURL(c.Request().Context(), user.ResumeKey)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"url": url})
}

type rateRequest struct {
	RatedID uuid.UUID  `json:"ratedId"`
	Score   int        `json:"score"`
	Comment string     `json:"comment"`
	JobID   *uuid.UUID `json:"jobId"`
}

func (h *Handler) handleRate(c echo.Context) error {
	callerID, _, ok := requester(c)
	if !ok {
		return presenter.Error(c, domain.ErrUnauthenticated)
	}

	var req rateRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	rating, err := h.ratings.Rate(c.Request().Context(), callerID, usecase.RateInput{
		RatedID: req.RatedID,
		Score:   req.Score,
		Comment: req.Comment,
		JobID:   req.JobID,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, rating)
}

func (h *Handler) handleListRatings(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid user id")
	}

	ratings, err := h.ratings.ListForUser(c.Request().Context(), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, ratings)
}

func (h *Handler) handleReputation(c echo.Context) error {
	rep, err := h.ratings.Reputation(c.Request().Context(), c.Param("address"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, rep)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type string `json:"type"`
}

// handleRealtime streams the caller's notification channel over a
// websocket. Browsers cannot set headers on the upgrade request, so
// the token rides in the query string.
func (h *Handler) handleRealtime(c echo.Context) error {
	ctx := c.Request().Context()

	session, err := h.auth.Validate(ctx, c.QueryParam("token"))
	if err != nil {
		return presenter.Error(c, err)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	output := make(chan domain.Event)
	go func() {
		defer close(output)
		if err := h.signal.Stream(ctx, session.UserID.String(), output); err != nil && ctx.Err() == nil {
			slog.ErrorContext(
				ctx, "Notification stream ended",
				slog.String("error", err.Error()),
				slog.String("module", "socket"),
			)
		}
	}()

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}

			switch req.Type {
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event, ok := <-output:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
