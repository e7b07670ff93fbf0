package main

import "net/http"

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		shared = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				commonContext(app.timeout(next)))))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.authenticate(shared(next)))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
	)

	mux.Handle("POST /api/login/request", session(http.HandlerFunc(app.loginRequestPOST)))
	mux.Handle("POST /api/login/verify", session(http.HandlerFunc(app.loginVerifyPOST)))
	mux.Handle("POST /api/logout", session(http.HandlerFunc(app.logoutPOST)))
	mux.Handle("GET /api/auth/session", session(http.HandlerFunc(app.sessionGET)))

	mux.Handle("GET /api/profile", mustSession(http.HandlerFunc(app.profileGET)))
	mux.Handle("PUT /api/profile", mustSession(http.HandlerFunc(app.profilePUT)))
	mux.Handle("GET /api/profile/metrics", mustSession(http.HandlerFunc(app.profileMetricsGET)))
	mux.Handle("GET /api/onboarding/draft", mustSession(http.HandlerFunc(app.onboardingDraftGET)))
	mux.Handle("PUT /api/onboarding/draft", mustSession(http.HandlerFunc(app.onboardingDraftPUT)))
	mux.Handle("DELETE /api/onboarding/draft", mustSession(http.HandlerFunc(app.onboardingDraftDELETE)))

	mux.Handle("GET /api/exercises", mustSession(http.HandlerFunc(app.exercisesGET)))
	mux.Handle("GET /api/exercises/{id}", mustSession(http.HandlerFunc(app.exerciseGET)))

	mux.Handle("GET /api/plans", mustSession(http.HandlerFunc(app.plansGET)))
	mux.Handle("GET /api/plans/{date}", mustSession(http.HandlerFunc(app.planGET)))
	mux.Handle("PUT /api/plans/{date}", mustSession(http.HandlerFunc(app.planPUT)))
	mux.Handle("DELETE /api/plans/{date}", mustSession(http.HandlerFunc(app.planDELETE)))

	mux.Handle("POST /api/workouts/{date}/start", mustSession(http.HandlerFunc(app.sessionStartPOST)))
	mux.Handle("GET /api/session", mustSession(http.HandlerFunc(app.sessionStateGET)))
	mux.Handle("GET /api/session/hydration", mustSession(http.HandlerFunc(app.sessionHydrationGET)))
	mux.Handle("POST /api/session/exercises/{exerciseIndex}/sets", mustSession(http.HandlerFunc(app.sessionSetAddPOST)))
	mux.Handle("POST /api/session/exercises/{exerciseIndex}/sets/{setID}/toggle",
		mustSession(http.HandlerFunc(app.sessionSetTogglePOST)))
	mux.Handle("POST /api/session/exercises/{exerciseIndex}/sets/{setID}",
		mustSession(http.HandlerFunc(app.sessionSetUpdatePOST)))
	mux.Handle("DELETE /api/session/exercises/{exerciseIndex}/sets/{setID}",
		mustSession(http.HandlerFunc(app.sessionSetDELETE)))
	mux.Handle("PUT /api/session/exercises/{exerciseIndex}/notes",
		mustSession(http.HandlerFunc(app.sessionNotesPUT)))
	mux.Handle("POST /api/session/skip-rest", mustSession(http.HandlerFunc(app.sessionSkipRestPOST)))
	mux.Handle("POST /api/session/finish", mustSession(http.HandlerFunc(app.sessionFinishPOST)))
	mux.Handle("POST /api/session/cancel", mustSession(http.HandlerFunc(app.sessionCancelPOST)))

	mux.Handle("GET /api/history", mustSession(http.HandlerFunc(app.historyGET)))
	mux.Handle("GET /api/history/{id}", mustSession(http.HandlerFunc(app.historyEntryGET)))
	mux.Handle("DELETE /api/history/{id}", mustSession(http.HandlerFunc(app.historyEntryDELETE)))
	mux.Handle("POST /api/history/{id}/sync", mustSession(http.HandlerFunc(app.historyEntrySyncPOST)))

	mux.Handle("GET /api/posts", mustSession(http.HandlerFunc(app.postsGET)))
	mux.Handle("POST /api/posts", mustSession(http.HandlerFunc(app.postsPOST)))
	mux.Handle("PUT /api/posts/{id}", mustSession(http.HandlerFunc(app.postPUT)))
	mux.Handle("DELETE /api/posts/{id}", mustSession(http.HandlerFunc(app.postDELETE)))

	mux.Handle("GET /api/healthy", session(http.HandlerFunc(app.healthy)))

	mux.Handle("/", session(http.HandlerFunc(app.notFound)))

	return mux
}
