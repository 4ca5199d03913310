package routes

import (
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestStudentSelfServiceRoutesRegistered(t *testing.T) {
	app := fiber.New()
	SetupRoutes(app)

	registered := make(map[string]bool)
	for _, route := range app.GetRoutes() {
		registered[route.Method+" "+route.Path] = true
	}

	tests := []struct {
		name  string
		route string
	}{
		{"student pays own fee", "POST /api/me/fees/:id/pay"},
		{"student payment history", "GET /api/me/payments"},
		{"student fees", "GET /api/me/fees"},
		{"student course list", "GET /api/me/courses"},
		{"student course registration", "POST /api/me/courses"},
		{"student course drop", "PUT /api/me/courses/:id/drop"},
		{"student results", "GET /api/me/results"},
		{"student transcript", "GET /api/me/transcript"},
		{"student hostel view", "GET /api/me/hostel"},
		{"student hostel application", "POST /api/me/hostel/apply"},
		{"student id card request", "POST /api/me/id-card"},
		{"staff payment recording", "POST /api/finance/payments"},
		{"staff payment verification", "POST /api/finance/payments/:id/verify"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if !registered[tc.route] {
				t.Fatalf("expected route %q to be registered", tc.route)
			}
		})
	}
}
