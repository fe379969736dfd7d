package validation

// Column bounds of the original storage schema.
const (
	MaxTitleLen       = 32
	MaxDescriptionLen = 512
	MaxUsernameLen    = 20
)

// OfferCreate requires every offer field.
var OfferCreate = MustCompile(`{
	"type": "object",
	"properties": {
		"title":       {"type": "string", "maxLength": 32},
		"description": {"type": "string", "maxLength": 512},
		"skills_list": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["title", "description", "skills_list"]
}`)

// OfferUpdate accepts any subset of the offer fields.
var OfferUpdate = MustCompile(`{
	"type": "object",
	"properties": {
		"title":       {"type": "string", "maxLength": 32},
		"description": {"type": "string", "maxLength": 512},
		"skills_list": {"type": "array", "items": {"type": "string"}}
	}
}`)

// Credentials is used by both register and login.
var Credentials = MustCompile(`{
	"type": "object",
	"properties": {
		"username": {"type": "string", "minLength": 1, "maxLength": 20},
		"password": {"type": "string", "minLength": 1}
	},
	"required": ["username", "password"]
}`)
