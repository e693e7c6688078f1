package engine

import (
	"math"
	"time"

	"github.com/jon4hz/safebadge/internal/database"
	"github.com/samber/lo"
)

func (suite *EngineTestSuite) TestSetupJobs() {
	jobs := suite.engine.GetScheduler().GetJobs()
	suite.Contains(jobs, batteryDrainJobID)
	suite.Contains(jobs, locationDriftJobID)
	suite.Equal(time.Minute.String(), jobs[batteryDrainJobID].Interval)
	suite.Equal((30 * time.Second).String(), jobs[locationDriftJobID].Interval)
}

func (suite *EngineTestSuite) TestDrainBatteries() {
	suite.Require().NoError(suite.engine.drainBatteries(suite.ctx))

	demo, err := suite.engine.GetSettings(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	suite.Equal(84, demo.BatteryLevel)
	other, err := suite.engine.GetSettings(suite.ctx, suite.other.ID)
	suite.Require().NoError(err)
	suite.Equal(49, other.BatteryLevel)
}

func (suite *EngineTestSuite) TestDrainBatteries_SkipsInactiveAndEmpty() {
	_, err := suite.engine.UpdateSettings(suite.ctx, suite.demo.ID, database.DeviceSettingsUpdate{IsActive: lo.ToPtr(false)})
	suite.Require().NoError(err)
	_, err = suite.engine.UpdateBattery(suite.ctx, suite.other.ID, 0)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.engine.drainBatteries(suite.ctx))

	demo, err := suite.engine.GetSettings(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	suite.Equal(85, demo.BatteryLevel)
	other, err := suite.engine.GetSettings(suite.ctx, suite.other.ID)
	suite.Require().NoError(err)
	suite.Equal(0, other.BatteryLevel)
}

func (suite *EngineTestSuite) TestDriftLocations() {
	suite.Require().NoError(suite.engine.driftLocations(suite.ctx))

	demo, err := suite.engine.GetSettings(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(demo.LastLocation)
	suite.Equal(SimulatedAddress, demo.LastLocation.Address)
	suite.LessOrEqual(math.Abs(demo.LastLocation.Latitude-40.7128), maxDrift)
	suite.LessOrEqual(math.Abs(demo.LastLocation.Longitude+74.0060), maxDrift)

	// the other badge does not share its location
	other, err := suite.engine.GetSettings(suite.ctx, suite.other.ID)
	suite.Require().NoError(err)
	suite.Nil(other.LastLocation)
}

func (suite *EngineTestSuite) TestDriftLocations_SharingDisabled() {
	_, err := suite.engine.UpdateSettings(suite.ctx, suite.demo.ID, database.DeviceSettingsUpdate{LocationSharing: lo.ToPtr(false)})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.engine.driftLocations(suite.ctx))

	demo, err := suite.engine.GetSettings(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	suite.Equal("New York, NY, USA", demo.LastLocation.Address)
}

func (suite *EngineTestSuite) TestClamp() {
	suite.Equal(90.0, clamp(90.004, -90, 90))
	suite.Equal(-180.0, clamp(-180.2, -180, 180))
	suite.Equal(1.5, clamp(1.5, -90, 90))
}
