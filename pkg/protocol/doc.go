// Package protocol defines the exchange layer shared by both instrument
// wire protocols.
//
// A Transaction is one logical operation: an ordered list of Transfers
// executed over a single TransferHelper, chosen by the transaction's Hint.
// Only the response of the last transfer is decoded and returned. The first
// failing transfer aborts the rest.
//
// Exchange constructors for each wire family live in the legacy and obp
// subpackages. Feature helpers build transactions there and run them
// through a Link, which pairs the device's active Protocol and Bus:
//
//	tx := legacy.SetIntegrationTime(10_000)
//	if _, err := tx.Execute(link); err != nil {
//	    return err
//	}
package protocol
