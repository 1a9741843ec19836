package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/tarotfutura/futura/internal/handler/health"
	"github.com/tarotfutura/futura/internal/horoscope"
	"github.com/tarotfutura/futura/internal/payment"
	"github.com/tarotfutura/futura/internal/personality"
	"github.com/tarotfutura/futura/internal/reading"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type langQuery struct {
	Lang string `query:"lang" enum:"es,en" description:"Response language. Falls back to Accept-Language, then Spanish."`
}

type readingPath struct {
	ID string `path:"id"`
}

type signPath struct {
	Sign string `path:"sign" description:"Zodiac sign id, e.g. aries."`
	langQuery
}

type listQuery struct {
	Limit int `query:"limit" minimum:"1"`
}

type unlockInput struct {
	readingPath
	UnlockRequest
}

type eventsQuery struct {
	Token string `query:"token" required:"true" description:"User JWT. EventSource cannot send headers."`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Tarot Futura API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Three card tarot readings, personality archetypes and daily horoscopes.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/cards
	getCards, _ := r.NewOperationContext(http.MethodGet, "/api/cards")
	getCards.SetSummary("Card catalog")
	getCards.SetDescription("The 22 Major Arcana in deck order.")
	getCards.AddReqStructure(langQuery{})
	getCards.AddRespStructure([]CardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getCards)

	// GET /api/personality/questions
	getQuestions, _ := r.NewOperationContext(http.MethodGet, "/api/personality/questions")
	getQuestions.SetSummary("Personality quiz")
	getQuestions.AddReqStructure(langQuery{})
	getQuestions.AddRespStructure([]QuestionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getQuestions)

	// POST /api/personality/result
	postResult, _ := r.NewOperationContext(http.MethodPost, "/api/personality/result")
	postResult.SetSummary("Score the quiz")
	postResult.SetDescription("Takes one option index (0-3) per question and returns the winning archetype.")
	postResult.AddReqStructure(PersonalityResultRequest{})
	postResult.AddRespStructure(personality.Profile{}, openapi.WithHTTPStatus(http.StatusOK))
	postResult.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postResult)

	// GET /api/horoscopes
	getSigns, _ := r.NewOperationContext(http.MethodGet, "/api/horoscopes")
	getSigns.SetSummary("Zodiac signs")
	getSigns.AddReqStructure(langQuery{})
	getSigns.AddRespStructure([]horoscope.SignView{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getSigns)

	// GET /api/horoscopes/{sign}
	getHoroscope, _ := r.NewOperationContext(http.MethodGet, "/api/horoscopes/{sign}")
	getHoroscope.SetSummary("Daily horoscope")
	getHoroscope.SetDescription("Generated once per sign, UTC day and language, then served from cache.")
	getHoroscope.AddReqStructure(signPath{})
	getHoroscope.AddRespStructure(horoscope.Horoscope{}, openapi.WithHTTPStatus(http.StatusOK))
	getHoroscope.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getHoroscope.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(getHoroscope)

	// POST /api/readings
	postReading, _ := r.NewOperationContext(http.MethodPost, "/api/readings")
	postReading.SetSummary("Start a reading")
	postReading.SetDescription("Validates the seeker's input and draws three cards. Cards are then revealed over the event stream. Requires Bearer token.")
	postReading.AddReqStructure(CreateReadingRequest{})
	postReading.AddRespStructure(reading.View{}, openapi.WithHTTPStatus(http.StatusCreated))
	postReading.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postReading.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postReading)

	// GET /api/readings
	listReadings, _ := r.NewOperationContext(http.MethodGet, "/api/readings")
	listReadings.SetSummary("List readings")
	listReadings.SetDescription("The caller's readings, newest first. Requires Bearer token.")
	listReadings.AddReqStructure(listQuery{})
	listReadings.AddRespStructure([]reading.View{}, openapi.WithHTTPStatus(http.StatusOK))
	listReadings.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listReadings)

	// GET /api/readings/{id}
	getReading, _ := r.NewOperationContext(http.MethodGet, "/api/readings/{id}")
	getReading.SetSummary("Get reading")
	getReading.SetDescription("The future section and raw text are only present once the reading is unlocked. Requires Bearer token.")
	getReading.AddReqStructure(readingPath{})
	getReading.AddRespStructure(reading.View{}, openapi.WithHTTPStatus(http.StatusOK))
	getReading.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	getReading.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getReading)

	// POST /api/readings/{id}/interpret
	postInterpret, _ := r.NewOperationContext(http.MethodPost, "/api/readings/{id}/interpret")
	postInterpret.SetSummary("Interpret reading")
	postInterpret.SetDescription("Asks the oracle once; later calls return the stored interpretation. Requires Bearer token.")
	postInterpret.AddReqStructure(readingPath{})
	postInterpret.AddRespStructure(reading.View{}, openapi.WithHTTPStatus(http.StatusOK))
	postInterpret.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postInterpret.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postInterpret.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusTooManyRequests))
	postInterpret.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	postInterpret.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	postInterpret.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusGatewayTimeout))
	_ = r.AddOperation(postInterpret)

	// POST /api/readings/{id}/unlock
	postUnlock, _ := r.NewOperationContext(http.MethodPost, "/api/readings/{id}/unlock")
	postUnlock.SetSummary("Unlock premium section")
	postUnlock.SetDescription("Verifies the transaction with the payment processor. Replaying a processed transaction is a no-op. Requires Bearer token.")
	postUnlock.AddReqStructure(unlockInput{})
	postUnlock.AddRespStructure(payment.UnlockResult{}, openapi.WithHTTPStatus(http.StatusOK))
	postUnlock.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusPaymentRequired))
	postUnlock.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postUnlock.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postUnlock.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	postUnlock.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusGatewayTimeout))
	_ = r.AddOperation(postUnlock)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events for card reveals, interpretations and unlocks.")
	getEvents.AddReqStructure(eventsQuery{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	getEvents.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getEvents)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/admin/payments
	getPayments, _ := r.NewOperationContext(http.MethodGet, "/api/admin/payments")
	getPayments.SetSummary("Payment audit")
	getPayments.SetDescription("Recorded transactions, newest first. Requires admin_session cookie.")
	getPayments.AddReqStructure(listQuery{})
	getPayments.AddRespStructure([]payment.Payment{}, openapi.WithHTTPStatus(http.StatusOK))
	getPayments.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getPayments)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
