package errors_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/superpet/superpet-api/internal/errors"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) TestValidationBuilderNoErrors() {
	vb := errors.NewValidationBuilder()
	s.Nil(vb.Build())
}

func (s *ValidationTestSuite) TestValidationBuilderStableMessage() {
	vb := errors.NewValidationBuilder()
	vb.RequiredField("Store")
	vb.RequiredField("Catalog")

	err := vb.Build()
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Equal("validation failed: Catalog: is required; Store: is required", errors.GetMessage(err))

	fields, ok := errors.GetMeta(err)["validation_errors"].(map[string][]string)
	s.Require().True(ok)
	s.Equal([]string{"is required"}, fields["Store"])
}

func (s *ValidationTestSuite) TestValidateRequired() {
	testCases := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "empty", value: "", wantErr: true},
		{name: "whitespace", value: "   ", wantErr: true},
		{name: "present", value: "바둑이", wantErr: false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			vb := errors.NewValidationBuilder()
			errors.ValidateRequired("name", tc.value, vb)
			if tc.wantErr {
				s.Error(vb.Build())
			} else {
				s.NoError(vb.Build())
			}
		})
	}
}

func (s *ValidationTestSuite) TestValidateMaxLengthCountsCharacters() {
	vb := errors.NewValidationBuilder()
	// six Hangul syllables are eighteen bytes
	errors.ValidateMaxLength("name", "용감한바둑이", 6, vb)
	s.NoError(vb.Build())

	vb = errors.NewValidationBuilder()
	errors.ValidateMaxLength("name", "용감한바둑이다", 6, vb)
	s.Error(vb.Build())
}

func (s *ValidationTestSuite) TestValidateRangeAndPositive() {
	vb := errors.NewValidationBuilder()
	errors.ValidateRange("slot_count", 10, 1, 9, vb)
	errors.ValidatePositive("quantity", 0, vb)
	errors.ValidatePositive("amount", 3, vb)

	err := vb.Build()
	s.Require().Error(err)
	s.Contains(err.Error(), "slot_count: must be between 1 and 9")
	s.Contains(err.Error(), "quantity: must be positive")
	s.NotContains(err.Error(), "amount")
}

func (s *ValidationTestSuite) TestValidateEnum() {
	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("class", "Bard", []string{"Warrior", "Paladin", "Assassin"}, vb)
	err := vb.Build()
	s.Require().Error(err)
	s.Contains(err.Error(), "must be one of: Warrior, Paladin, Assassin")
}
