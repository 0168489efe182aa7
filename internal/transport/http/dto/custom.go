package dto

const (
	DesignBear   = "Bear"
	DesignCat    = "Cat"
	DesignRabbit = "Rabbit"
	DesignDog    = "Dog"
	DesignDuck   = "Duck"
	DesignOther  = "Other"

	AccessoryNone  = "none"
	AccessoryOther = "other"

	MinCustomNoteLen = 5
)

type DesignAccessories struct {
	Head           string `json:"head"`
	HeadCustomNote string `json:"headCustomNote,omitempty"`
	HeadColor      string `json:"headColor" validate:"required,hexcolor6"`
	Neck           string `json:"neck"`
	NeckCustomNote string `json:"neckCustomNote,omitempty"`
	NeckColor      string `json:"neckColor" validate:"required,hexcolor6"`
	SideFlowers    string `json:"sideFlowers"`
	Color          string `json:"color" validate:"required,hexcolor6"`
}

// DesignInput описывает форму «создай свою игрушку».
type DesignInput struct {
	CharacterName             string            `json:"characterName" validate:"required"`
	CharacterDesignType       string            `json:"characterDesignType" validate:"required,oneof=Bear Cat Rabbit Dog Duck Other"`
	CharacterDesignCustomNote string            `json:"characterDesignCustomNote,omitempty"`
	Height                    string            `json:"height" validate:"required"`
	Width                     string            `json:"width" validate:"required"`
	Length                    string            `json:"length" validate:"required"`
	Note                      string            `json:"note,omitempty"`
	MaterialIDs               []string          `json:"materialIds"`
	Images                    []string          `json:"images" validate:"min=1,dive,url"`
	Accessories               DesignAccessories `json:"accessories"`
}
