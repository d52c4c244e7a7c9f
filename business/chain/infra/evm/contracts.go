// Package evm implements the chain context's ports against Flow EVM.
package evm

// Read-side slice of the basket contract's interface. The write
// functions live with the transaction encoder; this package only calls
// views.
const appViewABI = `[
  {
    "type": "function",
    "name": "nameToId",
    "stateMutability": "view",
    "inputs": [{"name": "name", "type": "string"}],
    "outputs": [{"name": "", "type": "bytes32"}]
  },
  {
    "type": "function",
    "name": "getNormalizedPrice",
    "stateMutability": "view",
    "inputs": [{"name": "id", "type": "bytes32"}],
    "outputs": [{"name": "", "type": "uint256"}]
  },
  {
    "type": "function",
    "name": "flowPriceId",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [{"name": "", "type": "bytes32"}]
  },
  {
    "type": "function",
    "name": "pyth",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [{"name": "", "type": "address"}]
  }
]`

// Fee view of the Pyth verifier contract.
const pythABI = `[
  {
    "type": "function",
    "name": "getUpdateFee",
    "stateMutability": "view",
    "inputs": [{"name": "updateData", "type": "bytes[]"}],
    "outputs": [{"name": "feeAmount", "type": "uint256"}]
  }
]`
