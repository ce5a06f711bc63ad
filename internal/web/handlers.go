package web

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kathitsondhi/portfolio/internal/contact"
	"github.com/kathitsondhi/portfolio/internal/content"
	"github.com/kathitsondhi/portfolio/internal/gallery"
	"github.com/kathitsondhi/portfolio/internal/notify"
	"github.com/kathitsondhi/portfolio/internal/reveal"
	"github.com/kathitsondhi/portfolio/internal/session"
)

type pageData struct {
	Site     *content.Site
	Cards    []gallery.Card
	Form     contact.State
	Revealed map[string]bool
	Reveal   reveal.Config
	Toasts   []notify.Notification
}

type contactData struct {
	Form   contact.State
	Toasts []notify.Notification
}

func (s *Server) index(c *gin.Context) {
	sess := currentSession(c)
	if s.recorder != nil {
		s.recorder.RecordPageView()
	}
	c.HTML(http.StatusOK, "index.html", pageData{
		Site:     s.site,
		Cards:    s.cards(sess),
		Form:     sess.Form.State(),
		Revealed: sess.Reveal.RevealedSet(),
		Reveal:   s.reveal,
		Toasts:   sess.Toasts.Drain(),
	})
}

func (s *Server) toggleProject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid project id")
		return
	}
	sess := currentSession(c)
	sess.Gallery.Toggle(id)
	if s.recorder != nil {
		s.recorder.RecordToggle(sess.Gallery.IsExpanded(id))
	}
	c.HTML(http.StatusOK, "projects-grid", s.cards(sess))
}

func (s *Server) cards(sess *session.Session) []gallery.Card {
	return sess.Gallery.Cards(s.site.Projects)
}

func (s *Server) updateField(c *gin.Context) {
	field := c.Param("field")
	sess := currentSession(c)
	if err := sess.Form.UpdateField(field, c.PostForm(field)); err != nil {
		if errors.Is(err, contact.ErrUnknownField) {
			c.String(http.StatusBadRequest, "unknown field")
			return
		}
		c.String(http.StatusInternalServerError, "")
		return
	}
	c.Status(http.StatusNoContent)
}

var formFields = []string{contact.FieldName, contact.FieldEmail, contact.FieldMessage}

// submitContact applies any fields posted with the form, submits once and
// renders the form with the resulting toast.
func (s *Server) submitContact(c *gin.Context) {
	sess := currentSession(c)
	for _, f := range formFields {
		if v, ok := c.GetPostForm(f); ok {
			// Known field names cannot fail.
			_ = sess.Form.UpdateField(f, v)
		}
	}

	if !sess.Form.Submit(c.Request.Context()) {
		s.logger.Debug().Str("session_id", sess.ID).Msg("submission already in flight")
	}

	c.HTML(http.StatusOK, "contact-response", contactData{
		Form:   sess.Form.State(),
		Toasts: sess.Toasts.Drain(),
	})
}

func (s *Server) revealSection(c *gin.Context) {
	fraction := 1.0
	if v, ok := c.GetPostForm("fraction"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || f < 0 || f > 1 {
			c.String(http.StatusBadRequest, "invalid fraction")
			return
		}
		fraction = f
	}
	currentSession(c).Reveal.Report(c.Param("id"), fraction)
	c.Status(http.StatusNoContent)
}
