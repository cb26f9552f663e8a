package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// jsonb column helpers shared by the session/idea mappers. A failed
// unmarshal yields the zero value rather than an error: jsonb columns are
// written exclusively through these helpers, so a mismatch means manual
// tampering and the safe behavior is to treat the field as empty.

func stringsToJSON(values []string) datatypes.JSON {
	if values == nil {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func jsonToStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}

func mapToJSON(values map[string]string) datatypes.JSON {
	if values == nil {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func jsonToMap(raw datatypes.JSON) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	values := make(map[string]string)
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}

func structToJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
