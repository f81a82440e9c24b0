package routes

import (
	"net/http"

	"github.com/telecare/clinic-dashboard/backend/internal/api/handlers"
	"github.com/telecare/clinic-dashboard/backend/internal/api/middleware"
	"github.com/telecare/clinic-dashboard/backend/internal/infrastructure/observability"
)

// Router holds all route handlers

type Router struct {
	mux *http.ServeMux

	sessionHandler *handlers.SessionHandler

	patientHandler *handlers.PatientHandler

	appointmentHandler *handlers.AppointmentHandler

	consultationHandler *handlers.ConsultationHandler

	sessionResolver middleware.SessionResolver
	cookieName      string

	metrics *observability.Metrics
}

// NewRouter creates a new router

func NewRouter(

	sessionHandler *handlers.SessionHandler,

	patientHandler *handlers.PatientHandler,

	appointmentHandler *handlers.AppointmentHandler,

	consultationHandler *handlers.ConsultationHandler,

	sessionResolver middleware.SessionResolver,
	cookieName string,

	metrics *observability.Metrics,

) *Router {

	return &Router{

		mux: http.NewServeMux(),

		sessionHandler: sessionHandler,

		patientHandler: patientHandler,

		appointmentHandler: appointmentHandler,

		consultationHandler: consultationHandler,

		sessionResolver: sessionResolver,
		cookieName:      cookieName,

		metrics: metrics,
	}

}

// SetupRoutes configures all application routes

func (r *Router) SetupRoutes() http.Handler {

	// Health check endpoint

	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {

		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}

	})

	// Session endpoints are reachable without a session: login
	// creates one, the check reports the unauthenticated state, and
	// logout of a dead session is a no-op.

	r.mux.HandleFunc("POST /api/session", r.sessionHandler.Login)

	r.mux.HandleFunc("GET /api/session", r.sessionHandler.Check)

	r.mux.HandleFunc("DELETE /api/session", r.sessionHandler.Logout)

	// Every dashboard view is gated behind a live session.

	gate := middleware.SessionGate(r.sessionResolver, r.cookieName)

	// Patient roster endpoints

	r.mux.Handle("GET /api/patients", gate(http.HandlerFunc(r.patientHandler.ListPatients)))

	r.mux.Handle("POST /api/patients", gate(http.HandlerFunc(r.patientHandler.CreatePatient)))

	// Appointment endpoints

	r.mux.Handle("GET /api/appointments", gate(http.HandlerFunc(r.appointmentHandler.ListAppointments)))

	r.mux.Handle("POST /api/appointments", gate(http.HandlerFunc(r.appointmentHandler.CreateAppointment)))

	r.mux.Handle("DELETE /api/appointments/{id}", gate(http.HandlerFunc(r.appointmentHandler.DeleteAppointment)))

	// Consultation endpoints

	r.mux.Handle("GET /api/consultation/room", gate(http.HandlerFunc(r.consultationHandler.GetRoom)))

	r.mux.Handle("POST /api/consultation/room", gate(http.HandlerFunc(r.consultationHandler.JoinRoom)))

	r.mux.Handle("DELETE /api/consultation/room", gate(http.HandlerFunc(r.consultationHandler.LeaveRoom)))

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so error responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	handler = middleware.CORSMiddleware(handler)

	return handler
}
