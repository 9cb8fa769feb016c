package model

// RegionLevel is one level of the ubigeo hierarchy.
type RegionLevel int

const (
	// LevelDepartment is the top level (departamento).
	LevelDepartment RegionLevel = iota

	// LevelProvince is a province within a department.
	LevelProvince

	// LevelDistrict is a district within a province.
	LevelDistrict
)

// String returns the Spanish name of the level as used by the backend.
func (l RegionLevel) String() string {
	switch l {
	case LevelDepartment:
		return "departamento"
	case LevelProvince:
		return "provincia"
	case LevelDistrict:
		return "distrito"
	default:
		return "unknown"
	}
}

// Field returns the answer field that stores a selection at this level.
func (l RegionLevel) Field() Field {
	switch l {
	case LevelProvince:
		return FieldProvince
	case LevelDistrict:
		return FieldDistrict
	default:
		return FieldDepartment
	}
}

// RegionNode is a named region and, optionally, its loaded children.
type RegionNode struct {
	Name     string       `json:"name"`
	Children []RegionNode `json:"children,omitempty"`
}
