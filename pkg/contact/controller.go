package contact

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/azalea-web/contact-service/pkg/apiresponses"
)

// Controller exposes the contact submission endpoint.
type Controller struct {
	orchestrator *Orchestrator
	log          *zap.SugaredLogger
	middleware   []gin.HandlerFunc
}

// NewController creates the contact endpoint controller. Middleware (e.g.
// rate limiting) is applied to the whole route group.
func NewController(orchestrator *Orchestrator, log *zap.SugaredLogger, middleware ...gin.HandlerFunc) *Controller {
	return &Controller{
		orchestrator: orchestrator,
		log:          log.Named("contact"),
		middleware:   middleware,
	}
}

func (ct *Controller) BasePath() string { return "contact" }

func (ct *Controller) Handlers() []gin.HandlerFunc { return ct.middleware }

func (ct *Controller) Register(rg *gin.RouterGroup) error {
	rg.POST("", ct.submit)
	// Preflight is mostly answered by the CORS middleware; a plain OPTIONS
	// without preflight headers lands here and gets a bare 200.
	rg.OPTIONS("", func(c *gin.Context) { c.Status(http.StatusOK) })
	return nil
}

type submissionRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Number  string `json:"number" form:"number"`
	Message string `json:"message" form:"message"`
}

type submissionData struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Number      string    `json:"number"`
	Message     *string   `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type submissionResponse struct {
	IsSuccess     bool           `json:"isSuccess"`
	Message       string         `json:"message"`
	Data          submissionData `json:"data"`
	EmailStatus   string         `json:"emailStatus"`
	ZohoCRMStatus string         `json:"zohoCrmStatus"`
	ZohoCRMError  string         `json:"zohoCrmError,omitempty"`
}

func (ct *Controller) submit(c *gin.Context) {
	var req submissionRequest
	if err := c.ShouldBind(&req); err != nil {
		apiresponses.RespondBadRequest(c, "Invalid request body")
		return
	}

	result, err := ct.orchestrator.Handle(c.Request.Context(), req.Name, req.Email, req.Number, req.Message)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			apiresponses.RespondValidationError(c, verr.Message)
			return
		}
		apiresponses.RespondInternalError(c, "process contact submission", err, ct.log)
		return
	}

	message := "Contact submitted successfully, but email delivery failed"
	if result.EmailStatus == EmailStatusSent {
		message = "Contact submitted successfully and confirmation emails sent"
	}

	var msg *string
	if result.Record.Message != "" {
		m := result.Record.Message
		msg = &m
	}

	c.JSON(http.StatusCreated, submissionResponse{
		IsSuccess: true,
		Message:   message,
		Data: submissionData{
			Name:        result.Record.Name,
			Email:       result.Record.Email,
			Number:      result.Record.Number,
			Message:     msg,
			SubmittedAt: result.Record.CreatedAt.UTC(),
		},
		EmailStatus:   result.EmailStatus,
		ZohoCRMStatus: result.CRMStatus,
		ZohoCRMError:  result.CRMError,
	})
}
