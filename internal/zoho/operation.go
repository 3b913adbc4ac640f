package zoho

// Operation 是 Zoho CRM XML API 的远程方法名。
type Operation string

const (
	OpGetFields             Operation = "getFields"
	OpGetRecords            Operation = "getRecords"
	OpGetRecordByID         Operation = "getRecordById"
	OpGetRelatedRecords     Operation = "getRelatedRecords"
	OpSearchRecords         Operation = "searchRecords"
	OpGetSearchRecordsByPDC Operation = "getSearchRecordsByPDC"
	OpInsertRecords         Operation = "insertRecords"
	OpUpdateRecords         Operation = "updateRecords"
	OpUpdateRelatedRecords  Operation = "updateRelatedRecords"
	OpDeleteRecords         Operation = "deleteRecords"
	OpGetDeletedRecordIDs   Operation = "getDeletedRecordIds"
	OpUploadFile            Operation = "uploadFile"
	OpDownloadFile          Operation = "downloadFile"
	OpDeleteFile            Operation = "deleteFile"
)

func Operations() []Operation {
	return []Operation{
		OpGetFields,
		OpGetRecords,
		OpGetRecordByID,
		OpGetRelatedRecords,
		OpSearchRecords,
		OpGetSearchRecordsByPDC,
		OpInsertRecords,
		OpUpdateRecords,
		OpUpdateRelatedRecords,
		OpDeleteRecords,
		OpGetDeletedRecordIDs,
		OpUploadFile,
		OpDownloadFile,
		OpDeleteFile,
	}
}

func (o Operation) String() string { return string(o) }

func (o Operation) Valid() bool {
	for _, op := range Operations() {
		if op == o {
			return true
		}
	}
	return false
}

// IsWrite 判断操作是否会修改远端数据；未知操作按写操作处理。
func (o Operation) IsWrite() bool {
	switch o {
	case OpGetFields, OpGetRecords, OpGetRecordByID, OpGetRelatedRecords,
		OpSearchRecords, OpGetSearchRecordsByPDC, OpGetDeletedRecordIDs, OpDownloadFile:
		return false
	default:
		return true
	}
}
