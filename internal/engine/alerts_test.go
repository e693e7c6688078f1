package engine

import (
	"time"

	"github.com/jon4hz/safebadge/internal/database"
	"github.com/samber/lo"
)

func (suite *EngineTestSuite) TestCreateAlert_SnapshotsLocation() {
	alert, err := suite.engine.CreateAlert(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	suite.True(alert.IsActive)
	suite.Equal(suite.demo.ID, alert.UserID)
	suite.Equal(suite.clock.Now(), alert.Timestamp)
	suite.Equal("New York, NY, USA", alert.Location.Address)

	// later location changes do not touch the snapshot
	_, err = suite.engine.UpdateLocation(suite.ctx, suite.demo.ID, 1, 1, "Elsewhere")
	suite.Require().NoError(err)
	stored, err := suite.engine.GetAlert(suite.ctx, suite.demo.ID, alert.ID)
	suite.Require().NoError(err)
	suite.Equal("New York, NY, USA", stored.Location.Address)
}

func (suite *EngineTestSuite) TestCreateAlert_UnknownLocation() {
	alert, err := suite.engine.CreateAlert(suite.ctx, suite.other.ID)
	suite.Require().NoError(err)
	suite.Equal(database.UnknownLocation, alert.Location)
}

func (suite *EngineTestSuite) TestCreateAlert_InactiveDevice() {
	_, err := suite.engine.UpdateSettings(suite.ctx, suite.demo.ID, database.DeviceSettingsUpdate{IsActive: lo.ToPtr(false)})
	suite.Require().NoError(err)

	for range 3 {
		_, err = suite.engine.CreateAlert(suite.ctx, suite.demo.ID)
		suite.assertKind(err, ErrValidation, MsgDeviceInactive)
		suite.ErrorIs(err, ErrDeviceInactive)
	}

	alerts, err := suite.engine.ListAlerts(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	suite.Empty(alerts)
}

func (suite *EngineTestSuite) TestCreateAlert_NoSettings() {
	ghost := &database.User{Username: "ghost", FullName: "Ghost"}
	suite.Require().NoError(suite.store.CreateUser(suite.ctx, ghost))

	_, err := suite.engine.CreateAlert(suite.ctx, ghost.ID)
	suite.assertKind(err, ErrNotFound, MsgSettingsNotFound)
}

func (suite *EngineTestSuite) TestCreateAlert_NoDeduplication() {
	first, err := suite.engine.CreateAlert(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	suite.clock.Advance(time.Second)
	second, err := suite.engine.CreateAlert(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	suite.NotEqual(first.ID, second.ID)

	alerts, err := suite.engine.ListAlerts(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	suite.Require().Len(alerts, 2)
	suite.Equal(first.ID, alerts[0].ID)
	suite.Equal(second.ID, alerts[1].ID)
	suite.Equal(2.0, suite.counterValue("safebadge_alerts_created_total"))
}

func (suite *EngineTestSuite) TestDeactivateAlert_Idempotent() {
	alert, err := suite.engine.CreateAlert(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)

	for range 2 {
		deactivated, err := suite.engine.DeactivateAlert(suite.ctx, suite.demo.ID, alert.ID)
		suite.Require().NoError(err)
		suite.False(deactivated.IsActive)
		suite.Equal(alert.ID, deactivated.ID)
	}

	suite.Equal(1.0, suite.counterValue("safebadge_alerts_deactivated_total"))

	events, err := suite.engine.GetHistory(suite.ctx, suite.demo.ID, 0)
	suite.Require().NoError(err)
	types := lo.Map(events, func(e database.HistoryEvent, _ int) database.HistoryEventType { return e.EventType })
	suite.Equal([]database.HistoryEventType{
		database.HistoryEventAlertDeactivated,
		database.HistoryEventAlertCreated,
	}, types)
}

func (suite *EngineTestSuite) TestDeactivateAlert_Errors() {
	_, err := suite.engine.DeactivateAlert(suite.ctx, suite.demo.ID, 42)
	suite.assertKind(err, ErrNotFound, MsgAlertNotFound)

	alert, err := suite.engine.CreateAlert(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)

	_, err = suite.engine.DeactivateAlert(suite.ctx, suite.other.ID, alert.ID)
	suite.assertKind(err, ErrForbidden, "Not authorized to update this alert")

	_, err = suite.engine.GetAlert(suite.ctx, suite.other.ID, alert.ID)
	suite.assertKind(err, ErrForbidden, "Not authorized to view this alert")

	stored, err := suite.engine.GetAlert(suite.ctx, suite.demo.ID, alert.ID)
	suite.Require().NoError(err)
	suite.True(stored.IsActive)
}

func (suite *EngineTestSuite) TestListAlerts_UnknownUser() {
	_, err := suite.engine.ListAlerts(suite.ctx, 999)
	suite.assertKind(err, ErrNotFound, MsgUserNotFound)
}

// counterValue reads an unlabeled counter from the metrics registry.
func (suite *EngineTestSuite) counterValue(name string) float64 {
	families, err := suite.metrics.Registry().Gather()
	suite.Require().NoError(err)
	for _, family := range families {
		if family.GetName() == name && len(family.GetMetric()) > 0 {
			return family.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}
