package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/prop-catalog/internal/apperrors"
	"github.com/javajoker/prop-catalog/internal/models"
	"github.com/javajoker/prop-catalog/internal/utils"
)

func (s *SubmissionServiceSuite) TestReview_NotifiesSubmitter() {
	approved := s.submitNew(member, "Glass Table", 300, s.tables.ID)
	rejected := s.submitNew(member, "Velvet Couch", 90, s.seating.ID)

	_, err := s.submissions.Approve(s.ctx(), admin, approved.ID, &ReviewRequest{})
	s.Require().NoError(err)
	_, err = s.submissions.Reject(s.ctx(), admin, rejected.ID, &ReviewRequest{AdminNotes: "Already listed"})
	s.Require().NoError(err)

	page, err := s.notifications.List(s.ctx(), member, false, utils.PaginationParams{})
	s.Require().NoError(err)
	s.Require().Len(page.Items, 2)
	s.Equal(int64(2), page.Total)

	newest := page.Items[0]
	s.Equal(models.NotificationSubmissionRejected, newest.Type)
	s.Equal(`Your submission "Velvet Couch" was not accepted`, newest.Title)
	s.Equal("A reviewer declined your submission. Reviewer notes: Already listed", newest.Message)
	s.Require().NotNil(newest.RelatedResourceID)
	s.Equal(rejected.ID, *newest.RelatedResourceID)

	s.Equal(models.NotificationSubmissionApproved, page.Items[1].Type)
	s.Equal(`"Glass Table" has been added to the catalog.`, page.Items[1].Message)

	// Other members see nothing.
	page, err = s.notifications.List(s.ctx(), other, false, utils.PaginationParams{})
	s.Require().NoError(err)
	s.Empty(page.Items)
}

func (s *SubmissionServiceSuite) TestNotifications_MarkRead() {
	submission := s.submitNew(member, "Glass Table", 300, s.tables.ID)
	_, err := s.submissions.Approve(s.ctx(), admin, submission.ID, &ReviewRequest{AdminNotes: "Nice find"})
	s.Require().NoError(err)

	page, err := s.notifications.List(s.ctx(), member, true, utils.PaginationParams{})
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	id := page.Items[0].ID
	s.Contains(page.Items[0].Message, "Reviewer notes: Nice find")

	_, err = s.notifications.MarkRead(s.ctx(), other, id)
	s.ErrorIs(err, apperrors.ErrNotFound)

	read, err := s.notifications.MarkRead(s.ctx(), member, id)
	s.Require().NoError(err)
	s.NotNil(read.ReadAt)

	// Marking twice is harmless.
	again, err := s.notifications.MarkRead(s.ctx(), member, id)
	s.Require().NoError(err)
	s.NotNil(again.ReadAt)

	page, err = s.notifications.List(s.ctx(), member, true, utils.PaginationParams{})
	s.Require().NoError(err)
	s.Empty(page.Items)

	_, err = s.notifications.List(s.ctx(), models.Actor{}, false, utils.PaginationParams{})
	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func TestRenderTemplate_EditApproval(t *testing.T) {
	tmpl := notificationTemplates[models.NotificationSubmissionApproved]

	body, err := renderTemplate(tmpl.Body, map[string]interface{}{"Name": "Oak Desk", "Type": "edit", "Notes": ""})
	require.NoError(t, err)
	assert.Equal(t, `Your correction to "Oak Desk" is now live in the catalog.`, body)

	_, err = renderTemplate("{{.Broken", nil)
	assert.Error(t, err)
}
