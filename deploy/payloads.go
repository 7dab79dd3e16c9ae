package deploy

import (
	"fmt"
	"strings"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/bcs"

	fchainaptos "github.com/movedeploy/aptos-resource-publish/chain/aptos"
	"github.com/movedeploy/aptos-resource-publish/move"
)

const (
	// DefaultDeployerModule is the module of the deployer package that creates resource accounts.
	DefaultDeployerModule = "deployer"
	// CreateResourceAccountFunction is the entry function called on the deployer module.
	CreateResourceAccountFunction = "create_resource_account"
	// PublishPackageFunction is the entry function of the deployer module that publishes a
	// package with the signer capability of a resource account.
	PublishPackageFunction = "publish_package"
)

// FrameworkPublishFunction publishes a package to the signer's own account. It only succeeds
// when the package was built for the signer's address.
var FrameworkPublishFunction = FunctionID{
	Address: aptoslib.AccountOne,
	Module:  "code",
	Name:    "publish_package_txn",
}

// DefaultPublishFunction returns <deployer>::<module>::publish_package, which publishes to the
// resource account passed as its first argument.
func DefaultPublishFunction(deployer aptoslib.AccountAddress, module string) FunctionID {
	if module == "" {
		module = DefaultDeployerModule
	}

	return FunctionID{Address: deployer, Module: module, Name: PublishPackageFunction}
}

// FunctionID identifies an entry function as <address>::<module>::<function>.
type FunctionID struct {
	Address aptoslib.AccountAddress
	Module  string
	Name    string
}

// ParseFunctionID parses "0x1::code::publish_package_txn".
func ParseFunctionID(s string) (FunctionID, error) {
	parts := strings.Split(s, "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return FunctionID{}, fmt.Errorf("%w: function id %q must be <address>::<module>::<function>", ErrInput, s)
	}

	addr, err := fchainaptos.ParseAddress(parts[0])
	if err != nil {
		return FunctionID{}, fmt.Errorf("%w: function id %q: %w", ErrInput, s, err)
	}

	return FunctionID{Address: addr, Module: parts[1], Name: parts[2]}, nil
}

func (f FunctionID) String() string {
	return fmt.Sprintf("%s::%s::%s", f.Address.String(), f.Module, f.Name)
}

// IsFrameworkCode reports whether f is in the framework code module, whose publish functions
// publish to the signer's own account and take no target address.
func (f FunctionID) IsFrameworkCode() bool {
	return f.Address == aptoslib.AccountOne && f.Module == "code"
}

// CreateResourceAccountPayload calls <deployer>::<module>::create_resource_account with the
// BCS encoded seed as the only argument.
func CreateResourceAccountPayload(deployer aptoslib.AccountAddress, module string, seed []byte) (aptoslib.TransactionPayload, error) {
	if module == "" {
		module = DefaultDeployerModule
	}

	serializedSeed, err := fchainaptos.SerializeSeed(seed)
	if err != nil {
		return aptoslib.TransactionPayload{}, err
	}

	return aptoslib.TransactionPayload{
		Payload: &aptoslib.EntryFunction{
			Module: aptoslib.ModuleId{
				Address: deployer,
				Name:    module,
			},
			Function: CreateResourceAccountFunction,
			ArgTypes: []aptoslib.TypeTag{},
			Args:     [][]byte{serializedSeed},
		},
	}, nil
}

// PublishPackagePayload calls fn with the package metadata and code. Functions outside the
// framework code module publish on behalf of the resource account and receive its address
// as the first argument.
func PublishPackagePayload(fn FunctionID, resource aptoslib.AccountAddress, pkg *move.Package) (aptoslib.TransactionPayload, error) {
	if pkg == nil || len(pkg.Code) == 0 {
		return aptoslib.TransactionPayload{}, fmt.Errorf("%w: package has no modules", ErrBuild)
	}

	metadata, err := bcs.SerializeBytes(pkg.Metadata)
	if err != nil {
		return aptoslib.TransactionPayload{}, fmt.Errorf("failed to serialize package metadata: %w", err)
	}

	code, err := serializeCode(pkg.Code)
	if err != nil {
		return aptoslib.TransactionPayload{}, err
	}

	args := [][]byte{metadata, code}
	if !fn.IsFrameworkCode() {
		args = append([][]byte{append([]byte(nil), resource[:]...)}, args...)
	}

	return aptoslib.TransactionPayload{
		Payload: &aptoslib.EntryFunction{
			Module: aptoslib.ModuleId{
				Address: fn.Address,
				Name:    fn.Module,
			},
			Function: fn.Name,
			ArgTypes: []aptoslib.TypeTag{},
			Args:     args,
		},
	}, nil
}

// serializeCode encodes the modules as vector<vector<u8>>.
func serializeCode(code [][]byte) ([]byte, error) {
	ser := &bcs.Serializer{}
	ser.Uleb128(uint32(len(code)))
	for _, module := range code {
		ser.WriteBytes(module)
	}
	if err := ser.Error(); err != nil {
		return nil, fmt.Errorf("failed to serialize package code: %w", err)
	}

	return ser.ToBytes(), nil
}
