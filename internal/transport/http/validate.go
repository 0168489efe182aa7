package http

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"handmade_shop/internal/transport/http/dto"
)

var (
	phoneRegexp    = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	hexColorRegexp = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// NewValidator собирает validator с правилами форм магазина.
func NewValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegexp.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool {
		return hexColorRegexp.MatchString(fl.Field().String())
	})

	v.RegisterStructValidation(designStructLevel, dto.DesignInput{})

	return v
}

// для своего персонажа нужно описание не короче MinCustomNoteLen символов
func designStructLevel(sl validator.StructLevel) {
	input := sl.Current().Interface().(dto.DesignInput)

	if input.CharacterDesignType != dto.DesignOther {
		return
	}

	if len([]rune(strings.TrimSpace(input.CharacterDesignCustomNote))) < dto.MinCustomNoteLen {
		sl.ReportError(input.CharacterDesignCustomNote, "characterDesignCustomNote", "CharacterDesignCustomNote", "customnote", "")
	}
}
