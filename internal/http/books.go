package http

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hillman/internal/auth"
)

// MsgReviewSubmitted is flashed after a review is stored.
const MsgReviewSubmitted = "Submission successful"

// BooksController serves the catalog, recommendations and the reading actions.
type BooksController struct {
	catalog   Catalog
	presenter *Presenter
}

func NewBooksController(catalog Catalog, presenter *Presenter) *BooksController {
	return &BooksController{
		catalog:   catalog,
		presenter: presenter,
	}
}

// ListBooks handles GET /books
func (bc *BooksController) ListBooks(c *gin.Context) {
	books, err := bc.catalog.ListBooks()
	if err != nil {
		bc.presenter.Fail(c, err, "")
		return
	}
	bc.presenter.Render(c, http.StatusOK, "books", gin.H{
		"Title": "Books",
		"books": books,
		"count": len(books),
	})
}

// SuggestedBooks handles GET /suggested_books
// Books in the genre of the current book, best rated first. Without a current
// book the notice is flashed on the catalog page instead.
func (bc *BooksController) SuggestedBooks(c *gin.Context) {
	rec, err := bc.catalog.RecommendBooks(auth.GetUsername(c))
	if err != nil {
		bc.presenter.Fail(c, err, "/books")
		return
	}

	if rec.Notice != "" {
		bc.presenter.Notice(c, rec.Notice, "/books", gin.H{
			"books":  rec.Books,
			"count":  0,
			"notice": rec.Notice,
		})
		return
	}

	bc.presenter.Render(c, http.StatusOK, "books", gin.H{
		"Title":     "Suggested books",
		"Suggested": true,
		"books":     rec.Books,
		"count":     len(rec.Books),
	})
}

// GetBook handles GET /book/:title
func (bc *BooksController) GetBook(c *gin.Context) {
	book, err := bc.catalog.GetBook(c.Param("title"))
	if err != nil {
		bc.presenter.Fail(c, err, "/books")
		return
	}
	bc.presenter.Render(c, http.StatusOK, "book", gin.H{
		"Title": book.Title,
		"book":  book,
	})
}

// BeginReading handles POST /begin/:title
func (bc *BooksController) BeginReading(c *gin.Context) {
	update, err := bc.catalog.BeginReading(auth.GetUsername(c), c.Param("title"))
	if err != nil {
		bc.presenter.Fail(c, err, "/books")
		return
	}
	bc.presenter.Done(c, http.StatusCreated, `Enjoy "`+update.BookTitle+`"!`, "/timeline", update)
}

// ReviewPage handles GET /review/:title
func (bc *BooksController) ReviewPage(c *gin.Context) {
	book, err := bc.catalog.GetBook(c.Param("title"))
	if err != nil {
		bc.presenter.Fail(c, err, "/books")
		return
	}
	lo, hi := bc.catalog.RatingBounds()
	bc.presenter.Render(c, http.StatusOK, "review", gin.H{
		"Title":     "Review " + book.Title,
		"book":      book,
		"RatingMin": lo,
		"RatingMax": hi,
	})
}

// SubmitReview handles POST /review/:title
// Form fields: rating (required, within the configured bounds), content.
func (bc *BooksController) SubmitReview(c *gin.Context) {
	title := c.Param("title")
	rating := parseRating(c.PostForm("rating"))

	update, err := bc.catalog.SubmitReview(auth.GetUsername(c), title, rating, c.PostForm("content"))
	if err != nil {
		bc.presenter.Fail(c, err, "/review/"+url.PathEscape(title))
		return
	}
	bc.presenter.Done(c, http.StatusCreated, MsgReviewSubmitted, "/timeline", update)
}
