package engine

import (
	"github.com/jon4hz/safebadge/internal/database"
	"github.com/samber/lo"
)

func (suite *EngineTestSuite) TestContacts_CreateListDelete() {
	contact, err := suite.engine.CreateContact(suite.ctx, suite.demo.ID, ContactInput{
		Name:  "Jane Doe",
		Phone: "+15550001",
		Email: lo.ToPtr("jane@example.com"),
	})
	suite.Require().NoError(err)

	contacts, err := suite.engine.ListContacts(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	matches := lo.Filter(contacts, func(c database.EmergencyContact, _ int) bool { return c.ID == contact.ID })
	suite.Len(matches, 1)

	suite.Require().NoError(suite.engine.DeleteContact(suite.ctx, suite.demo.ID, contact.ID))

	contacts, err = suite.engine.ListContacts(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	suite.False(lo.ContainsBy(contacts, func(c database.EmergencyContact) bool { return c.ID == contact.ID }))

	err = suite.engine.DeleteContact(suite.ctx, suite.demo.ID, contact.ID)
	suite.assertKind(err, ErrNotFound, MsgContactNotFound)

	events, err := suite.engine.GetHistory(suite.ctx, suite.demo.ID, 0)
	suite.Require().NoError(err)
	suite.Require().Len(events, 2)
	suite.Equal(database.HistoryEventContactDeleted, events[0].EventType)
	suite.Equal(database.HistoryEventContactCreated, events[1].EventType)
}

func (suite *EngineTestSuite) TestContacts_Validation() {
	_, err := suite.engine.CreateContact(suite.ctx, suite.demo.ID, ContactInput{Name: "Jane"})
	suite.assertKind(err, ErrValidation, MsgContactRequired)
	_, err = suite.engine.CreateContact(suite.ctx, suite.demo.ID, ContactInput{Name: "  ", Phone: "+1"})
	suite.assertKind(err, ErrValidation, MsgContactRequired)

	contact, err := suite.engine.CreateContact(suite.ctx, suite.demo.ID, ContactInput{Name: " Jane ", Phone: " +1 "})
	suite.Require().NoError(err)
	suite.Equal("Jane", contact.Name)
	suite.Equal("+1", contact.Phone)
	suite.Nil(contact.Email)

	_, err = suite.engine.UpdateContact(suite.ctx, suite.demo.ID, contact.ID, database.ContactUpdate{Phone: lo.ToPtr("")})
	suite.assertKind(err, ErrValidation, MsgContactRequired)

	_, err = suite.engine.CreateContact(suite.ctx, 999, ContactInput{Name: "Jane", Phone: "+1"})
	suite.assertKind(err, ErrNotFound, MsgUserNotFound)
}

func (suite *EngineTestSuite) TestContacts_UpdatePartial() {
	contact, err := suite.engine.CreateContact(suite.ctx, suite.demo.ID, ContactInput{Name: "Jane", Phone: "+1"})
	suite.Require().NoError(err)

	updated, err := suite.engine.UpdateContact(suite.ctx, suite.demo.ID, contact.ID, database.ContactUpdate{
		Email: lo.ToPtr("jane@example.com"),
	})
	suite.Require().NoError(err)
	suite.Equal("Jane", updated.Name)
	suite.Equal("+1", updated.Phone)
	suite.Equal("jane@example.com", lo.FromPtr(updated.Email))

	_, err = suite.engine.UpdateContact(suite.ctx, suite.demo.ID, 999, database.ContactUpdate{Name: lo.ToPtr("x")})
	suite.assertKind(err, ErrNotFound, MsgContactNotFound)
}

func (suite *EngineTestSuite) TestContacts_ForeignOwnership() {
	contact, err := suite.engine.CreateContact(suite.ctx, suite.demo.ID, ContactInput{Name: "Jane", Phone: "+1"})
	suite.Require().NoError(err)

	_, err = suite.engine.UpdateContact(suite.ctx, suite.other.ID, contact.ID, database.ContactUpdate{Name: lo.ToPtr("Mallory")})
	suite.assertKind(err, ErrForbidden, "Not authorized to update this contact")
	suite.NotErrorIs(err, ErrNotFound)

	err = suite.engine.DeleteContact(suite.ctx, suite.other.ID, contact.ID)
	suite.assertKind(err, ErrForbidden, "Not authorized to delete this contact")

	stored, err := suite.store.GetContact(suite.ctx, contact.ID)
	suite.Require().NoError(err)
	suite.Equal("Jane", stored.Name)

	events, err := suite.engine.GetHistory(suite.ctx, suite.other.ID, 0)
	suite.Require().NoError(err)
	suite.Require().Len(events, 2)
	suite.Equal(database.HistoryEventAccessDenied, events[0].EventType)
	suite.Equal(contact.ID, lo.FromPtr(events[0].ContactID))
}
