package http

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hillman/internal/apperrors"
	"github.com/mrlokans/hillman/internal/auth"
	"github.com/mrlokans/hillman/internal/bulkload"
	"github.com/mrlokans/hillman/internal/config"
	"github.com/mrlokans/hillman/internal/entities"
)

// maxUploadSize bounds an uploaded users/books file.
const maxUploadSize = 10 << 20

// AdminController serves the management pages. Every route is behind
// RequireAdmin.
type AdminController struct {
	admin     Administration
	users     UserCreator
	loader    BulkLoader
	files     config.BulkLoad
	auditor   AuditLog
	presenter *Presenter
}

func NewAdminController(admin Administration, users UserCreator, loader BulkLoader, files config.BulkLoad, auditor AuditLog, presenter *Presenter) *AdminController {
	return &AdminController{
		admin:     admin,
		users:     users,
		loader:    loader,
		files:     files,
		auditor:   auditor,
		presenter: presenter,
	}
}

// ManagePage handles GET /manage
func (ac *AdminController) ManagePage(c *gin.Context) {
	users, err := ac.admin.ListUsers()
	if err != nil {
		ac.presenter.Fail(c, err, "")
		return
	}
	ac.presenter.Render(c, http.StatusOK, "manage", gin.H{
		"Title": "Manage users",
		"users": users,
	})
}

// AddUser handles POST /manage
// Form fields: username, password, role (optional, member by default).
func (ac *AdminController) AddUser(c *gin.Context) {
	actor := auth.GetUsername(c)
	username := c.PostForm("username")

	user, err := ac.users.CreateUser(username, c.PostForm("password"), entities.UserRole(c.PostForm("role")))
	ac.auditor.LogAdmin(actor, "add_user", username, "Created account", err)
	if err != nil {
		ac.presenter.Fail(c, err, "/manage")
		return
	}
	ac.presenter.Done(c, http.StatusCreated, "New user "+user.Username+" successfully registered", "/manage", user)
}

// RemoveUser handles POST /remove/:username
// The user's timeline entries are removed with the account.
func (ac *AdminController) RemoveUser(c *gin.Context) {
	actor := auth.GetUsername(c)
	username := c.Param("username")

	removed, err := ac.admin.AdminRemoveUser(actor, username)
	ac.auditor.LogAdmin(actor, "remove_user", username, fmt.Sprintf("Removed account and %d updates", removed), err)
	if err != nil {
		ac.presenter.Fail(c, err, "/manage")
		return
	}
	ac.presenter.Done(c, http.StatusOK, "User "+username+" successfully removed", "/manage", gin.H{
		"username":        username,
		"updates_removed": removed,
	})
}

// RemoveUpdate handles POST /remove_update/:id
func (ac *AdminController) RemoveUpdate(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err == nil {
		err = ac.admin.RemoveUpdate(id)
	}
	ac.auditor.LogAdmin(auth.GetUsername(c), "remove_update", c.Param("id"), "Removed timeline entry", err)
	if err != nil {
		ac.presenter.Fail(c, err, "/timeline")
		return
	}
	ac.presenter.Done(c, http.StatusOK, "Update successfully removed", "/timeline", gin.H{"id": id})
}

// ShowBooks handles GET /showbooks
func (ac *AdminController) ShowBooks(c *gin.Context) {
	books, err := ac.admin.ListBooks()
	if err != nil {
		ac.presenter.Fail(c, err, "")
		return
	}
	ac.presenter.Render(c, http.StatusOK, "showbooks", gin.H{
		"Title": "All books",
		"books": books,
		"count": len(books),
	})
}

// ShowUsers handles GET /showusers
func (ac *AdminController) ShowUsers(c *gin.Context) {
	users, err := ac.admin.ListUsers()
	if err != nil {
		ac.presenter.Fail(c, err, "")
		return
	}
	ac.presenter.Render(c, http.StatusOK, "showusers", gin.H{
		"Title": "All users",
		"users": users,
		"count": len(users),
	})
}

// LoadUsers handles POST /loadusers
func (ac *AdminController) LoadUsers(c *gin.Context) {
	ac.load(c, bulkload.KindUsers, ac.files.UsersFile)
}

// LoadBooks handles POST /loadbooks
func (ac *AdminController) LoadBooks(c *gin.Context) {
	ac.load(c, bulkload.KindBooks, ac.files.BooksFile)
}

// load reads records from the uploaded "file" field, or from the configured
// path when nothing was uploaded.
func (ac *AdminController) load(c *gin.Context, kind bulkload.Kind, path string) {
	result, source, err := ac.runLoad(c, kind, path)

	created, failed := 0, 0
	if result != nil {
		created, failed = result.Created, result.Failed()
	}
	ac.auditor.LogBulkLoad(auth.GetUsername(c), string(kind), source, created, failed, err)
	if err != nil {
		ac.presenter.Fail(c, err, "/manage")
		return
	}

	message := fmt.Sprintf("Loaded %d %s", created, kind)
	if failed > 0 {
		message += fmt.Sprintf(", %d lines rejected", failed)
	}
	ac.presenter.Done(c, http.StatusOK, message, "/manage", result)
}

func (ac *AdminController) runLoad(c *gin.Context, kind bulkload.Kind, path string) (*bulkload.Result, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	file, header, err := c.Request.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		source := filepath.Base(header.Filename)
		result, err := ac.loader.Load(kind, file)
		return result, source, err
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// fall back to the configured file
	default:
		return nil, "upload", apperrors.New(apperrors.KindValidation, "Could not read the uploaded file", err)
	}

	if path == "" {
		return nil, "", apperrors.Validation(fmt.Sprintf("No %s file configured", kind))
	}
	result, err := ac.loader.LoadFile(kind, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, path, apperrors.NotFound("file", path)
	}
	return result, path, err
}

// ClearBooks handles POST /clearbooks
// Removes every book together with the timeline entries that reference one.
func (ac *AdminController) ClearBooks(c *gin.Context) {
	removed, err := ac.admin.ClearBooks()
	ac.auditor.LogAdmin(auth.GetUsername(c), "clear_books", "books", fmt.Sprintf("Removed %d books", removed), err)
	if err != nil {
		ac.presenter.Fail(c, err, "/manage")
		return
	}
	ac.presenter.Done(c, http.StatusOK, fmt.Sprintf("Removed %d books", removed), "/manage", gin.H{"removed": removed})
}
