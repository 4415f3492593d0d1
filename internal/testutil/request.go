package testutil

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
)

// SampleRequest returns a fully populated request for id.
func SampleRequest(id int64) models.DeploymentRequest {
	return models.DeploymentRequest{
		Owner:           common.HexToAddress("0x368493E7Ec4ffbFe236FA6A75165a346680BB8c7"),
		RelayAddress:    common.HexToAddress("0x231a2672996739351Bf25783b4883a1BAeAA5490"),
		Name:            "DLTHU",
		Symbol:          "FFDSFSD",
		TokenID:         "Daura",
		TermsURI:        "localhost:3000/smartContractFile/7061d214-1954-4aff-98dd-50ee884c5337",
		TermsHash:       common.BytesToHash([]byte("localhost:3000/smartContractFile")),
		IsRestricted:    true,
		RegistryAddress: common.HexToAddress("0xFf07e965181112F00B271A961f737B513a5E6b3A"),
		OperatorAddress: common.HexToAddress("0x11307B101C800d40cb20bC09CEe25ea3897Ca6fc"),
		UseRuleEngine:   true,
		Guardians: []common.Address{
			common.HexToAddress("0xc98fddaa24b8d1fb21d01c40134e40ab9dc963dc"),
			common.HexToAddress("0x9f03D5226B48267123b8E4d264e619Fe2B243CE0"),
		},
		DeploymentID: big.NewInt(id),
	}
}
