package commands

import (
	"errors"
	"fmt"

	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/shell"
	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/bcrypt"
)

const keyringService = "flick"
const keyringUser = "lockscreen"

const minPasscodeLength = 4

// passcodeCost is the bcrypt work factor for stored passcodes
var passcodeCost = bcrypt.DefaultCost

var errIncorrectPasscode = errors.New("incorrect passcode")

type PasscodeRequest struct {
	Passcode string `json:"passcode"`
}

// SetPasscodeCommand stores a bcrypt hash of the passcode in the OS keyring
func SetPasscodeCommand(req PasscodeRequest) *CommandResponse {
	if len(req.Passcode) < minPasscodeLength {
		return NewErrorResponse(fmt.Errorf("passcode must be at least %d characters", minPasscodeLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Passcode), passcodeCost)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to hash passcode: %w", err))
	}

	if err := keyring.Set(keyringService, keyringUser, string(hash)); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to store passcode: %w", err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": "Passcode set",
	})
}

// ClearPasscodeCommand removes the stored passcode so Unlock needs none
func ClearPasscodeCommand() *CommandResponse {
	if err := keyring.Delete(keyringService, keyringUser); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return NewErrorResponse(fmt.Errorf("no passcode is set"))
		}
		return NewErrorResponse(fmt.Errorf("failed to clear passcode: %w", err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": "Passcode cleared",
	})
}

// verifyPasscode succeeds when no passcode is stored
func verifyPasscode(passcode string) error {
	hash, err := keyring.Get(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read passcode: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return errIncorrectPasscode
		}
		return fmt.Errorf("failed to verify passcode: %w", err)
	}
	return nil
}

// LockCommand shows the lock screen
func LockCommand() *CommandResponse {
	var state ShellStateResponse
	err := call(func(c *compositor.Compositor) {
		c.GoToView(shell.ViewLock)
		state = shellState(c)
	})
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(state)
}

// UnlockCommand checks the passcode and leaves the lock screen for home
func UnlockCommand(req PasscodeRequest) *CommandResponse {
	if err := verifyPasscode(req.Passcode); err != nil {
		return NewErrorResponse(err)
	}

	var locked bool
	var state ShellStateResponse
	err := call(func(c *compositor.Compositor) {
		locked = c.State().View == shell.ViewLock
		if locked {
			c.GoToView(shell.ViewHome)
		}
		state = shellState(c)
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]interface{}{
		"unlocked": locked,
		"state":    state,
	})
}
