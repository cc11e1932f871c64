// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/accessmaps/accessmap/internal/app/system/auth"
)

// SiteName is the display name used across page titles and chrome.
const SiteName = "AccessMap"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	UserName   string
	UserEmail  string

	// Page context
	Title       string
	CurrentPath string
}

// NewBaseVM creates a populated BaseVM for a page.
func NewBaseVM(r *http.Request, title string) BaseVM {
	vm := BaseVM{
		SiteName:    SiteName,
		Title:       title,
		CurrentPath: r.URL.Path,
	}
	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.UserName = u.Name
		vm.UserEmail = u.Email
	}
	return vm
}
