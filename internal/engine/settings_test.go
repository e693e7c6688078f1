package engine

import (
	"errors"

	"github.com/jon4hz/safebadge/internal/database"
	"github.com/samber/lo"
)

func (suite *EngineTestSuite) TestUpdateBattery_Range() {
	for _, level := range []int{0, 1, 50, 99, 100} {
		settings, err := suite.engine.UpdateBattery(suite.ctx, suite.demo.ID, level)
		suite.Require().NoError(err)
		suite.Equal(level, settings.BatteryLevel)
	}

	for _, level := range []int{-1, -5, 101, 1000} {
		_, err := suite.engine.UpdateBattery(suite.ctx, suite.demo.ID, level)
		suite.assertKind(err, ErrValidation, MsgInvalidBattery)

		settings, err := suite.engine.GetSettings(suite.ctx, suite.demo.ID)
		suite.Require().NoError(err)
		suite.Equal(100, settings.BatteryLevel, "rejected level %d must not be stored", level)
	}
}

func (suite *EngineTestSuite) TestUpdateBattery_Scenario() {
	settings, err := suite.engine.GetSettings(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	suite.True(settings.IsActive)
	suite.Equal(85, settings.BatteryLevel)

	_, err = suite.engine.UpdateBattery(suite.ctx, suite.demo.ID, -5)
	suite.assertKind(err, ErrValidation, MsgInvalidBattery)
	settings, err = suite.engine.GetSettings(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	suite.Equal(85, settings.BatteryLevel)

	settings, err = suite.engine.UpdateBattery(suite.ctx, suite.demo.ID, 10)
	suite.Require().NoError(err)
	suite.Equal(10, settings.BatteryLevel)
}

func (suite *EngineTestSuite) TestUpdateSettings_Partial() {
	settings, err := suite.engine.UpdateSettings(suite.ctx, suite.demo.ID, database.DeviceSettingsUpdate{
		SoundAlarm: lo.ToPtr(false),
	})
	suite.Require().NoError(err)
	suite.False(settings.SoundAlarm)
	suite.True(settings.IsActive)
	suite.True(settings.LocationSharing)
	suite.True(settings.SMSAlerts)
	suite.True(settings.EmergencyServices)
	suite.Equal(85, settings.BatteryLevel)

	settings, err = suite.engine.UpdateSettings(suite.ctx, suite.demo.ID, database.DeviceSettingsUpdate{})
	suite.Require().NoError(err)
	suite.False(settings.SoundAlarm)
}

func (suite *EngineTestSuite) TestUpdates_NeverCreateSettings() {
	ghost := &database.User{Username: "ghost", FullName: "Ghost"}
	suite.Require().NoError(suite.store.CreateUser(suite.ctx, ghost))

	_, err := suite.engine.UpdateSettings(suite.ctx, ghost.ID, database.DeviceSettingsUpdate{IsActive: lo.ToPtr(true)})
	suite.assertKind(err, ErrNotFound, MsgSettingsNotFound)
	_, err = suite.engine.UpdateBattery(suite.ctx, ghost.ID, 50)
	suite.assertKind(err, ErrNotFound, MsgSettingsNotFound)
	_, err = suite.engine.UpdateLocation(suite.ctx, ghost.ID, 1, 2, "")
	suite.assertKind(err, ErrNotFound, MsgSettingsNotFound)

	_, err = suite.engine.GetSettings(suite.ctx, ghost.ID)
	suite.assertKind(err, ErrNotFound, MsgSettingsNotFound)
}

func (suite *EngineTestSuite) TestUpdateLocation() {
	settings, err := suite.engine.UpdateLocation(suite.ctx, suite.demo.ID, 48.8584, 2.2945, "Eiffel Tower")
	suite.Require().NoError(err)
	suite.Equal("Eiffel Tower", settings.LastLocation.Address)

	settings, err = suite.engine.UpdateLocation(suite.ctx, suite.demo.ID, 40.7128, -74, "  ")
	suite.Require().NoError(err)
	suite.Equal("40.7128, -74", settings.LastLocation.Address)

	_, err = suite.engine.UpdateLocation(suite.ctx, suite.demo.ID, 91, 0, "")
	suite.assertKind(err, ErrValidation, MsgInvalidLocation)
	_, err = suite.engine.UpdateLocation(suite.ctx, suite.demo.ID, 0, -181, "")
	suite.assertKind(err, ErrValidation, MsgInvalidLocation)
}

func (suite *EngineTestSuite) TestUpdateLocation_Geocoded() {
	suite.engine.geocoder = stubGeocoder{address: "Times Square, New York"}
	settings, err := suite.engine.UpdateLocation(suite.ctx, suite.demo.ID, 40.758, -73.9855, "")
	suite.Require().NoError(err)
	suite.Equal("Times Square, New York", settings.LastLocation.Address)

	suite.engine.geocoder = stubGeocoder{err: errors.New("rate limited")}
	settings, err = suite.engine.UpdateLocation(suite.ctx, suite.demo.ID, 40.758, -73.9855, "")
	suite.Require().NoError(err)
	suite.Equal("40.758, -73.9855", settings.LastLocation.Address)
}

func (suite *EngineTestSuite) TestFormatCoordinates() {
	suite.Equal("0, 0", FormatCoordinates(0, 0))
	suite.Equal("-33.8688, 151.2093", FormatCoordinates(-33.8688, 151.2093))
}
