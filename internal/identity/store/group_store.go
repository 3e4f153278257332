package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"

	contactModel "github.com/wso2/identity-contact-resolution-service/internal/contact/model"
	"github.com/wso2/identity-contact-resolution-service/internal/identity/model"
	"github.com/wso2/identity-contact-resolution-service/internal/system/constants"
	"github.com/wso2/identity-contact-resolution-service/internal/system/database/provider"
	errors2 "github.com/wso2/identity-contact-resolution-service/internal/system/errors"
	"github.com/wso2/identity-contact-resolution-service/internal/system/log"
)

// ErrMergeConflict reports that one of the groups involved in a merge was
// changed or absorbed by a concurrent writer. Callers re-resolve the roots
// and retry.
var ErrMergeConflict = errors.New("identity group changed concurrently")

func scanGroupRow(row map[string]interface{}) (model.IdentityGroup, error) {

	var group model.IdentityGroup

	group.RootID = row["root_id"].(int64)
	group.RowVersion = row["row_version"].(int64)

	membersJSON := row["members"].([]byte)
	if err := json.Unmarshal(membersJSON, &group.Members); err != nil {
		errorMsg := "Failed to unmarshal group members"
		log.GetLogger().Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UNMARSHAL_JSON.Code,
			Message:     errors2.UNMARSHAL_JSON.Message,
			Description: errorMsg,
		}, err)
		return model.IdentityGroup{}, serverError
	}
	return group, nil
}

// groupLockKey maps a root id onto the 64-bit advisory lock keyspace.
func groupLockKey(rootId int64) int64 {

	hash := fnv.New64a()
	_, _ = hash.Write([]byte(constants.GroupLockPrefix + strconv.FormatInt(rootId, 10)))
	return int64(hash.Sum64())
}

// CreateContactWithGroup inserts a contact and registers it as its own
// singleton identity group in one transaction. Creating both rows atomically
// means no contact can ever become visible without a group row, even when
// the process dies mid-sequence. Returns the server-assigned contact id.
func CreateContactWithGroup(contact contactModel.Contact) (int64, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := "Failed to get database client for creating a contact"
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_CONTACT.Code,
			Message:     errors2.ADD_CONTACT.Message,
			Description: errorMsg,
		}, err)
		return 0, serverError
	}
	defer dbClient.Close()

	tx, err := dbClient.BeginTx()
	if err != nil {
		errorMsg := "Failed to begin contact creation transaction"
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_CONTACT.Code,
			Message:     errors2.ADD_CONTACT.Message,
			Description: errorMsg,
		}, err)
		return 0, serverError
	}

	contactId, txErr := createContactWithGroupTx(tx, contact)
	if txErr != nil {
		_ = tx.Rollback()
		return 0, txErr
	}

	if err := tx.Commit(); err != nil {
		errorMsg := "Failed to commit contact creation"
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_CONTACT.Code,
			Message:     errors2.ADD_CONTACT.Message,
			Description: errorMsg,
		}, err)
		return 0, serverError
	}
	return contactId, nil
}

func createContactWithGroupTx(tx *sql.Tx, contact contactModel.Contact) (int64, error) {

	logger := log.GetLogger()

	var contactId int64
	err := tx.QueryRow(`
		INSERT INTO contacts (
		email, phone_number, linked_id, link_precedence
	) VALUES ($1, $2, $3, $4)
	RETURNING contact_id;`,
		contact.Email,
		contact.PhoneNumber,
		contact.LinkedID,
		contact.LinkPrecedence,
	).Scan(&contactId)
	if err != nil {
		errorMsg := "Failed to insert contact"
		logger.Debug(errorMsg, log.Error(err))
		return 0, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_CONTACT.Code,
			Message:     errors2.ADD_CONTACT.Message,
			Description: errorMsg,
		}, err)
	}

	membersJSON, _ := json.Marshal([]int64{contactId})

	if _, err := tx.Exec(`
		INSERT INTO identity_groups (root_id, members, row_version)
		VALUES ($1, $2, 1);`, contactId, membersJSON); err != nil {
		errorMsg := fmt.Sprintf("Failed to create singleton group for contact: %d", contactId)
		logger.Debug(errorMsg, log.Error(err))
		return 0, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_IDENTITY_GROUP.Code,
			Message:     errors2.ADD_IDENTITY_GROUP.Message,
			Description: errorMsg,
		}, err)
	}
	return contactId, nil
}

// FindRootOf returns the root of the group containing the given contact.
// The boolean is false when the contact belongs to no group.
func FindRootOf(contactId int64) (int64, bool, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := "Failed to get database client for root lookup"
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_IDENTITY_GROUP.Code,
			Message:     errors2.GET_IDENTITY_GROUP.Message,
			Description: errorMsg,
		}, err)
		return 0, false, serverError
	}
	defer dbClient.Close()

	memberJSON, _ := json.Marshal([]int64{contactId})

	query := `
		SELECT root_id FROM identity_groups
		WHERE members @> $1;`

	results, err := dbClient.ExecuteQuery(query, memberJSON)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to find root of contact: %d", contactId)
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_IDENTITY_GROUP.Code,
			Message:     errors2.GET_IDENTITY_GROUP.Message,
			Description: errorMsg,
		}, err)
		return 0, false, serverError
	}
	if len(results) == 0 {
		return 0, false, nil
	}

	return results[0]["root_id"].(int64), true, nil
}

// GetGroup fetches a group by its root id. Returns nil when no group is
// rooted at the given id.
func GetGroup(rootId int64) (*model.IdentityGroup, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := "Failed to get database client for fetching an identity group"
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_IDENTITY_GROUP.Code,
			Message:     errors2.GET_IDENTITY_GROUP.Message,
			Description: errorMsg,
		}, err)
		return nil, serverError
	}
	defer dbClient.Close()

	query := `
		SELECT root_id, members, row_version FROM identity_groups
		WHERE root_id = $1;`

	results, err := dbClient.ExecuteQuery(query, rootId)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to fetch group rooted at: %d", rootId)
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_IDENTITY_GROUP.Code,
			Message:     errors2.GET_IDENTITY_GROUP.Message,
			Description: errorMsg,
		}, err)
		return nil, serverError
	}
	if len(results) == 0 {
		return nil, nil
	}

	group, err := scanGroupRow(results[0])
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// MergeInto folds the group rooted at losingRoot into the group rooted at
// survivingRoot, in one transaction. Both roots are locked with
// transaction-scoped advisory locks in ascending root id order, then the
// rows are re-read and written conditionally on their row versions.
// Returns ErrMergeConflict when either group was changed or absorbed since
// the caller observed the roots.
func MergeInto(survivingRoot, losingRoot int64) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := "Failed to get database client for merging identity groups"
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.MERGE_IDENTITY_GROUPS.Code,
			Message:     errors2.MERGE_IDENTITY_GROUPS.Message,
			Description: errorMsg,
		}, err)
		return serverError
	}
	defer dbClient.Close()

	tx, err := dbClient.BeginTx()
	if err != nil {
		errorMsg := "Failed to begin merge transaction"
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.MERGE_IDENTITY_GROUPS.Code,
			Message:     errors2.MERGE_IDENTITY_GROUPS.Message,
			Description: errorMsg,
		}, err)
		return serverError
	}

	mergeErr := mergeGroupsTx(tx, survivingRoot, losingRoot)
	if mergeErr != nil {
		_ = tx.Rollback()
		return mergeErr
	}

	if err := tx.Commit(); err != nil {
		errorMsg := fmt.Sprintf("Failed to commit merge of %d into %d", losingRoot, survivingRoot)
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.MERGE_IDENTITY_GROUPS.Code,
			Message:     errors2.MERGE_IDENTITY_GROUPS.Message,
			Description: errorMsg,
		}, err)
		return serverError
	}
	return nil
}

func mergeGroupsTx(tx *sql.Tx, survivingRoot, losingRoot int64) error {

	logger := log.GetLogger()

	// Lock both roots in ascending id order so concurrent merges touching
	// overlapping groups serialize instead of deadlocking.
	first, second := survivingRoot, losingRoot
	if second < first {
		first, second = second, first
	}
	for _, rootId := range []int64{first, second} {
		if _, err := tx.Exec("SELECT pg_advisory_xact_lock($1)", groupLockKey(rootId)); err != nil {
			errorMsg := fmt.Sprintf("Failed to lock group rooted at: %d", rootId)
			logger.Debug(errorMsg, log.Error(err))
			return errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.LOCK_ACQUIRE.Code,
				Message:     errors2.LOCK_ACQUIRE.Message,
				Description: errorMsg,
			}, err)
		}
	}

	surviving, err := readGroupTx(tx, survivingRoot)
	if err != nil {
		return err
	}
	losing, err := readGroupTx(tx, losingRoot)
	if err != nil {
		return err
	}
	// Either root may have been absorbed by another merge before we got the
	// locks. The caller re-resolves and retries.
	if surviving == nil || losing == nil {
		return ErrMergeConflict
	}

	merged := MergeMembers(surviving.Members, losing.Members)
	mergedJSON, err := json.Marshal(merged)
	if err != nil {
		errorMsg := "Failed to marshal merged members"
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.MARSHAL_JSON.Code,
			Message:     errors2.MARSHAL_JSON.Message,
			Description: errorMsg,
		}, err)
	}

	result, err := tx.Exec(`
		UPDATE identity_groups
		SET members = $1, row_version = row_version + 1
		WHERE root_id = $2 AND row_version = $3;`,
		mergedJSON, surviving.RootID, surviving.RowVersion)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to update group rooted at: %d", surviving.RootID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.MERGE_IDENTITY_GROUPS.Code,
			Message:     errors2.MERGE_IDENTITY_GROUPS.Message,
			Description: errorMsg,
		}, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrMergeConflict
	}

	result, err = tx.Exec(`
		DELETE FROM identity_groups
		WHERE root_id = $1 AND row_version = $2;`,
		losing.RootID, losing.RowVersion)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to delete group rooted at: %d", losing.RootID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.MERGE_IDENTITY_GROUPS.Code,
			Message:     errors2.MERGE_IDENTITY_GROUPS.Message,
			Description: errorMsg,
		}, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrMergeConflict
	}

	return nil
}

func readGroupTx(tx *sql.Tx, rootId int64) (*model.IdentityGroup, error) {

	var (
		group       model.IdentityGroup
		membersJSON []byte
	)

	row := tx.QueryRow(`
		SELECT root_id, members, row_version FROM identity_groups
		WHERE root_id = $1;`, rootId)

	err := row.Scan(&group.RootID, &membersJSON, &group.RowVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to read group rooted at: %d", rootId)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_IDENTITY_GROUP.Code,
			Message:     errors2.GET_IDENTITY_GROUP.Message,
			Description: errorMsg,
		}, err)
	}

	if err := json.Unmarshal(membersJSON, &group.Members); err != nil {
		errorMsg := "Failed to unmarshal group members"
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UNMARSHAL_JSON.Code,
			Message:     errors2.UNMARSHAL_JSON.Message,
			Description: errorMsg,
		}, err)
	}
	return &group, nil
}
