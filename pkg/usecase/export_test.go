package usecase

var (
	ExpandTemplate    = expandTemplate
	RenderTableRows   = renderTableRows
	RenderMessageList = renderMessageList
)
