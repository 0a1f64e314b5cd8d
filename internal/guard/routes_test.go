package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want RouteClass
	}{
		{"/", RoutePublic},
		{"/shop", RoutePublic},
		{"/shop/gamis-emerald", RoutePublic},
		{"/about", RoutePublic},
		{"/login", RoutePublic},
		{"/register", RoutePublic},
		{"/unauthorized", RoutePublic},

		{"/static/app.css", RouteExcluded},
		{"/favicon.ico", RouteExcluded},
		{"/logo.png", RouteExcluded},
		{"/auth/login", RouteExcluded},
		{"/auth/session", RouteExcluded},
		{"/api/auth/callback", RouteExcluded},
		{"/healthz", RouteExcluded},
		{"/metrics", RouteExcluded},

		{"/dashboard", RouteProtected},
		{"/orders", RouteProtected},
		{"/orders/1001", RouteProtected},
		{"/profile", RouteProtected},
		{"/checkout", RouteProtected},

		{"/admin", RouteAdminOnly},
		{"/admin/dashboard", RouteAdminOnly},
		{"/staff", RouteStaffOrAdmin},
		{"/staff/orders", RouteStaffOrAdmin},

		{"/api/orders", RouteProtectedAPI},
		{"/api/orders/1001", RouteProtectedAPI},
		{"/api/reports", RouteProtectedAPI},
		{"/api/permissions", RoutePublic},

		{"/totally/unknown", RouteUnclassified},
		{"", RouteUnclassified},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Classify(tc.path), "path %q", tc.path)
	}
}

// A path under a role-restricted prefix must classify by the restriction
// even though it would also match the generic protected list shape.
func TestClassifyMostRestrictiveWins(t *testing.T) {
	assert.Equal(t, RouteAdminOnly, Classify("/admin/orders"))
	assert.Equal(t, RouteStaffOrAdmin, Classify("/staff/dashboard"))
}

func TestClassifyIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, RouteAdminOnly, Classify("/admin/dashboard"))
	}
}
