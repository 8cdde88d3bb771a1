// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

// Messages holds every player-facing string the engine emits. All of
// them are configurable so operators can localize; zero values fall
// back to DefaultMessages at engine construction.
type Messages struct {
	InvalidNicknameKick string `koanf:"invalid_nickname_kick"`
	WrongCaseKick       string `koanf:"wrong_case_kick"`
	IPLimitKick         string `koanf:"ip_limit_kick"`
	TimesUpKick         string `koanf:"times_up_kick"`
	WrongPasswordKick   string `koanf:"wrong_password_kick"`

	RegisterPrompt     string `koanf:"register_prompt"`
	LoginPrompt        string `koanf:"login_prompt"`
	TotpPrompt         string `koanf:"totp_prompt"`
	RegisterSuccessful string `koanf:"register_successful"`
	LoginSuccessful    string `koanf:"login_successful"`
	LoginWrongPassword string `koanf:"login_wrong_password"`
	LoginPremium       string `koanf:"login_premium"`

	PasswordTooShort   string `koanf:"password_too_short"`
	PasswordTooLong    string `koanf:"password_too_long"`
	PasswordUnsafe     string `koanf:"password_unsafe"`
	PasswordsDontMatch string `koanf:"passwords_dont_match"`
	NameTakenRetry     string `koanf:"name_taken_retry"`
	StoreFailureRetry  string `koanf:"store_failure_retry"`
}

// DefaultMessages returns the built-in English strings.
func DefaultMessages() Messages {
	return Messages{
		InvalidNicknameKick: "Your nickname contains forbidden characters.",
		WrongCaseKick:       "You need to connect with the nickname case you registered with.",
		IPLimitKick:         "Your IP has reached the registration limit.",
		TimesUpKick:         "Authentication time is up.",
		WrongPasswordKick:   "Too many wrong passwords.",

		RegisterPrompt:     "Please register with /register <password> <repeat>.",
		LoginPrompt:        "Please log in with /login <password>. Attempts left: %d.",
		TotpPrompt:         "Please enter your 2FA code with /totp <code>.",
		RegisterSuccessful: "Registered successfully.",
		LoginSuccessful:    "Logged in successfully.",
		LoginWrongPassword: "Wrong password. Attempts left: %d.",
		LoginPremium:       "You were logged in automatically with your premium account.",

		PasswordTooShort:   "Your password is too short.",
		PasswordTooLong:    "Your password is too long.",
		PasswordUnsafe:     "Your password is too weak, pick another one.",
		PasswordsDontMatch: "The passwords don't match.",
		NameTakenRetry:     "This nickname was just registered by someone else, try again.",
		StoreFailureRetry:  "A storage error occurred, try again.",
	}
}

// merged returns m with empty fields filled from DefaultMessages.
func (m Messages) merged() Messages {
	defaults := DefaultMessages()
	fill := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
		}
	}
	fill(&m.InvalidNicknameKick, defaults.InvalidNicknameKick)
	fill(&m.WrongCaseKick, defaults.WrongCaseKick)
	fill(&m.IPLimitKick, defaults.IPLimitKick)
	fill(&m.TimesUpKick, defaults.TimesUpKick)
	fill(&m.WrongPasswordKick, defaults.WrongPasswordKick)
	fill(&m.RegisterPrompt, defaults.RegisterPrompt)
	fill(&m.LoginPrompt, defaults.LoginPrompt)
	fill(&m.TotpPrompt, defaults.TotpPrompt)
	fill(&m.RegisterSuccessful, defaults.RegisterSuccessful)
	fill(&m.LoginSuccessful, defaults.LoginSuccessful)
	fill(&m.LoginWrongPassword, defaults.LoginWrongPassword)
	fill(&m.LoginPremium, defaults.LoginPremium)
	fill(&m.PasswordTooShort, defaults.PasswordTooShort)
	fill(&m.PasswordTooLong, defaults.PasswordTooLong)
	fill(&m.PasswordUnsafe, defaults.PasswordUnsafe)
	fill(&m.PasswordsDontMatch, defaults.PasswordsDontMatch)
	fill(&m.NameTakenRetry, defaults.NameTakenRetry)
	fill(&m.StoreFailureRetry, defaults.StoreFailureRetry)
	return m
}
