package engine

import (
	"time"

	"github.com/jon4hz/safebadge/internal/database"
	"github.com/samber/lo"
)

func (suite *EngineTestSuite) TestCreateAlert_PushesNtfy() {
	recorder := newNtfyRecorder(suite.T())
	suite.engine.ntfy = recorder.client()

	_, err := suite.engine.CreateAlert(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)

	suite.Eventually(func() bool { return recorder.count() == 1 }, time.Second, 10*time.Millisecond)
}

func (suite *EngineTestSuite) TestCreateAlert_SMSAlertsDisabled() {
	recorder := newNtfyRecorder(suite.T())
	suite.engine.ntfy = recorder.client()

	_, err := suite.engine.UpdateSettings(suite.ctx, suite.demo.ID, database.DeviceSettingsUpdate{SMSAlerts: lo.ToPtr(false)})
	suite.Require().NoError(err)
	_, err = suite.engine.CreateAlert(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)

	suite.engine.notifications.Wait()
	suite.Equal(0, recorder.count())
}

func (suite *EngineTestSuite) TestCreateAlert_NotificationFailureDoesNotFail() {
	recorder := newNtfyRecorder(suite.T())
	suite.engine.ntfy = recorder.client()
	recorder.server.Close()

	alert, err := suite.engine.CreateAlert(suite.ctx, suite.demo.ID)
	suite.Require().NoError(err)
	suite.True(alert.IsActive)

	suite.engine.notifications.Wait()
}
