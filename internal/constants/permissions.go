package constants

const (
	CreateAsset   = "create_asset"
	ReviseNav     = "revise_nav"
	MintTokens    = "mint_tokens"
	RevokeTokens  = "revoke_tokens"
	AdjustBalance = "adjust_balance"
	FreezeToken   = "freeze_token"
	PlaceOrder    = "place_order"
	FillOrder     = "fill_order"
	CancelOrder   = "cancel_order"
	ReviewOrder   = "review_order"
	SetKycStatus  = "set_kyc_status"
	FreezeAccount = "freeze_account"
	ViewLedger    = "view_ledger"
)
