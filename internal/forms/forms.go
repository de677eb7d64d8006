// Package forms holds the two records edited by the onboarding wizard and the
// rules that decide when a step may be left.
package forms

import (
	"errors"
	"fmt"
	"strings"
)

const (
	GatewayConsumer = "Consumer"
	GatewayCCMULE   = "CCMULE"
	GatewayInterApp = "Inter-App"
	GatewayB2B      = "B2B"
	GatewaySSAF     = "SSAF"
)

// GatewayTypes lists gateway types in display order.
var GatewayTypes = []string{GatewayConsumer, GatewayCCMULE, GatewayInterApp, GatewayB2B, GatewaySSAF}

// DeploymentModels lists deployment models in display order.
var DeploymentModels = []string{"Cloud", "On-Premise", "Hybrid"}

// Environments lists target environments in display order.
var Environments = []string{"Development", "QA", "Staging", "Production"}

// SecurityOptions lists the supported security schemes in display order.
var SecurityOptions = []string{"OAuth", "API Key", "Basic Auth", "None"}

// Details is step one of the wizard.
type Details struct {
	GatewayType     string `json:"gatewayType" yaml:"gatewayType"`
	DeploymentModel string `json:"deploymentModel" yaml:"deploymentModel"`
	BasePath        string `json:"basePath" yaml:"basePath"`
	APIContext      string `json:"apiContext" yaml:"apiContext"`
}

// MetaData is step two of the wizard.
type MetaData struct {
	APIName     string `json:"apiName" yaml:"apiName"`
	APIVersion  string `json:"apiVersion" yaml:"apiVersion"`
	Environment string `json:"environment" yaml:"environment"`
	Owner       string `json:"owner" yaml:"owner"`
	ExpiryDate  string `json:"expiryDate" yaml:"expiryDate"`
	Security    string `json:"security" yaml:"security"`
}

// Payload is the flat request body sent on create and update.
type Payload struct {
	Details  `yaml:",inline"`
	MetaData `yaml:",inline"`
}

// NewDetails returns the empty step-one form. Gateway type starts at Consumer.
func NewDetails() Details {
	return Details{GatewayType: GatewayConsumer}
}

// Merge combines both forms into the request payload.
func Merge(d Details, m MetaData) Payload {
	return Payload{Details: d, MetaData: m}
}

// Split maps a server payload back onto the two forms. A missing gateway type
// falls back to Consumer; every other missing field stays empty.
func Split(p Payload) (Details, MetaData) {
	d := Details{
		GatewayType:     strings.TrimSpace(p.GatewayType),
		DeploymentModel: strings.TrimSpace(p.DeploymentModel),
		BasePath:        strings.TrimSpace(p.BasePath),
		APIContext:      strings.TrimSpace(p.APIContext),
	}
	if d.GatewayType == "" {
		d.GatewayType = GatewayConsumer
	}
	m := MetaData{
		APIName:     strings.TrimSpace(p.APIName),
		APIVersion:  strings.TrimSpace(p.APIVersion),
		Environment: strings.TrimSpace(p.Environment),
		Owner:       strings.TrimSpace(p.Owner),
		ExpiryDate:  strings.TrimSpace(p.ExpiryDate),
		Security:    strings.TrimSpace(p.Security),
	}
	return d, m
}

// ErrRequiredFields matches every *ValidationError via errors.Is.
var ErrRequiredFields = errors.New("please fill all required fields")

// ValidationError reports the fields that keep a step from being left.
type ValidationError struct {
	Step    string
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	if len(parts) == 0 {
		return ErrRequiredFields.Error()
	}
	return fmt.Sprintf("%s (%s: %s)", ErrRequiredFields.Error(), e.Step, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrRequiredFields }

// Validate checks the four required step-one fields and the enumerations.
func (d Details) Validate() error {
	v := &ValidationError{Step: "details"}
	required(v, "gatewayType", d.GatewayType)
	required(v, "deploymentModel", d.DeploymentModel)
	required(v, "basePath", d.BasePath)
	required(v, "apiContext", d.APIContext)
	oneOf(v, "gatewayType", d.GatewayType, GatewayTypes)
	oneOf(v, "deploymentModel", d.DeploymentModel, DeploymentModels)
	return v.orNil()
}

// Validate checks name, version and environment. Owner, expiry and security
// are optional but must be valid when set.
func (m MetaData) Validate() error {
	v := &ValidationError{Step: "metadata"}
	required(v, "apiName", m.APIName)
	required(v, "apiVersion", m.APIVersion)
	required(v, "environment", m.Environment)
	oneOf(v, "environment", m.Environment, Environments)
	oneOf(v, "security", m.Security, SecurityOptions)
	return v.orNil()
}

func required(v *ValidationError, name, value string) {
	if strings.TrimSpace(value) == "" {
		v.Missing = append(v.Missing, name)
	}
}

func oneOf(v *ValidationError, name, value string, allowed []string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	for _, a := range allowed {
		if a == value {
			return
		}
	}
	v.Invalid = append(v.Invalid, name)
}

func (v *ValidationError) orNil() error {
	if len(v.Missing) == 0 && len(v.Invalid) == 0 {
		return nil
	}
	return v
}

// Cycle returns the option after (or before, when delta < 0) current. Unknown
// or empty values start from the first option.
func Cycle(options []string, current string, delta int) string {
	if len(options) == 0 {
		return current
	}
	idx := -1
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if delta < 0 {
			return options[len(options)-1]
		}
		return options[0]
	}
	n := len(options)
	return options[((idx+delta)%n+n)%n]
}
