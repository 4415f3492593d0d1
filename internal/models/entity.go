package models

import "fmt"

// EntityType tags the contract kind handed to the verification service.
type EntityType string

const (
	EntityTypeCMTAT      EntityType = "CMTAT"
	EntityTypeGlobalList EntityType = "GlobalList"
	EntityTypeFactory    EntityType = "CMTATFactory"
)

var entityTypes = []EntityType{EntityTypeCMTAT, EntityTypeGlobalList, EntityTypeFactory}

func EntityTypes() []EntityType {
	out := make([]EntityType, len(entityTypes))
	copy(out, entityTypes)
	return out
}

func ParseEntityType(s string) (EntityType, error) {
	for _, t := range entityTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// FullyQualifiedName returns the source path and contract name the explorer
// expects, e.g. contracts/CMTAT.sol:CMTAT.
func (t EntityType) FullyQualifiedName() string {
	return fmt.Sprintf("contracts/%s.sol:%s", string(t), string(t))
}
