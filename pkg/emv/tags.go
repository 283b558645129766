package emv

import (
	"fmt"

	"github.com/tomkp/go-emv/pkg/tlv"
)

// TAG DICTIONARY (Component F): a static, read-only mapping from tag number
// to symbolic name. This is purely a presentation layer — it never drives
// parsing decisions elsewhere in the package. Unknown tags resolve to
// UNKNOWN_<HEX>.

// TagNames maps known EMV/ISO 7816 tag numbers to their symbolic names, per
// EMV Books 1-4 and the common ISO 7816-4 FCI/FCP/FMD tag tables.
var TagNames = map[tlv.TagNumber]string{
	tlv.MustParseTagNumber("42"):     "ISSUER_IDENTIFICATION_NUMBER",
	tlv.MustParseTagNumber("4F"):     "APP_IDENTIFIER",
	tlv.MustParseTagNumber("50"):     "APPLICATION_LABEL",
	tlv.MustParseTagNumber("56"):     "TRACK1_DATA",
	tlv.MustParseTagNumber("57"):     "TRACK2_EQUIVALENT_DATA",
	tlv.MustParseTagNumber("5A"):     "PAN",
	tlv.MustParseTagNumber("61"):     "APPLICATION_TEMPLATE",
	tlv.MustParseTagNumber("6F"):     "FCI_TEMPLATE",
	tlv.MustParseTagNumber("70"):     "RECORD_TEMPLATE",
	tlv.MustParseTagNumber("71"):     "ISSUER_SCRIPT_TEMPLATE_1",
	tlv.MustParseTagNumber("72"):     "ISSUER_SCRIPT_TEMPLATE_2",
	tlv.MustParseTagNumber("73"):     "DIRECTORY_DISCRETIONARY_TEMPLATE",
	tlv.MustParseTagNumber("77"):     "RESPONSE_MESSAGE_TEMPLATE_2",
	tlv.MustParseTagNumber("80"):     "RESPONSE_MESSAGE_TEMPLATE_1",
	tlv.MustParseTagNumber("81"):     "AMOUNT_AUTHORISED_BINARY",
	tlv.MustParseTagNumber("82"):     "APPLICATION_INTERCHANGE_PROFILE",
	tlv.MustParseTagNumber("83"):     "COMMAND_TEMPLATE",
	tlv.MustParseTagNumber("84"):     "DF_NAME",
	tlv.MustParseTagNumber("86"):     "ISSUER_SCRIPT_COMMAND",
	tlv.MustParseTagNumber("87"):     "APPLICATION_PRIORITY_INDICATOR",
	tlv.MustParseTagNumber("88"):     "SHORT_FILE_IDENTIFIER",
	tlv.MustParseTagNumber("89"):     "AUTHORISATION_CODE",
	tlv.MustParseTagNumber("8A"):     "AUTHORISATION_RESPONSE_CODE",
	tlv.MustParseTagNumber("8C"):     "CDOL1",
	tlv.MustParseTagNumber("8D"):     "CDOL2",
	tlv.MustParseTagNumber("8E"):     "CVM_LIST",
	tlv.MustParseTagNumber("8F"):     "CERTIFICATION_AUTHORITY_PUBLIC_KEY_INDEX",
	tlv.MustParseTagNumber("90"):     "ISSUER_PUBLIC_KEY_CERTIFICATE",
	tlv.MustParseTagNumber("91"):     "ISSUER_AUTHENTICATION_DATA",
	tlv.MustParseTagNumber("92"):     "ISSUER_PUBLIC_KEY_REMAINDER",
	tlv.MustParseTagNumber("93"):     "SIGNED_STATIC_APPLICATION_DATA",
	tlv.MustParseTagNumber("94"):     "APPLICATION_FILE_LOCATOR",
	tlv.MustParseTagNumber("95"):     "TERMINAL_VERIFICATION_RESULTS",
	tlv.MustParseTagNumber("97"):     "TDOL",
	tlv.MustParseTagNumber("98"):     "TRANSACTION_CERTIFICATE_HASH_VALUE",
	tlv.MustParseTagNumber("99"):     "TRANSACTION_PIN_DATA",
	tlv.MustParseTagNumber("9A"):     "TRANSACTION_DATE",
	tlv.MustParseTagNumber("9B"):     "TRANSACTION_STATUS_INFORMATION",
	tlv.MustParseTagNumber("9C"):     "TRANSACTION_TYPE",
	tlv.MustParseTagNumber("9D"):     "DDF_NAME",
	tlv.MustParseTagNumber("9F01"):   "ACQUIRER_IDENTIFIER",
	tlv.MustParseTagNumber("9F02"):   "AMOUNT_AUTHORISED_NUMERIC",
	tlv.MustParseTagNumber("9F03"):   "AMOUNT_OTHER_NUMERIC",
	tlv.MustParseTagNumber("9F04"):   "AMOUNT_OTHER_BINARY",
	tlv.MustParseTagNumber("9F05"):   "APPLICATION_DISCRETIONARY_DATA",
	tlv.MustParseTagNumber("9F06"):   "AID_TERMINAL",
	tlv.MustParseTagNumber("9F07"):   "APPLICATION_USAGE_CONTROL",
	tlv.MustParseTagNumber("9F08"):   "APPLICATION_VERSION_NUMBER",
	tlv.MustParseTagNumber("9F09"):   "APPLICATION_VERSION_NUMBER_TERMINAL",
	tlv.MustParseTagNumber("9F0A"):   "APPLICATION_SELECTION_REGISTERED_PROPRIETARY_DATA",
	tlv.MustParseTagNumber("9F0B"):   "CARDHOLDER_NAME_EXTENDED",
	tlv.MustParseTagNumber("9F0C"):   "ISSUER_IDENTIFICATION_NUMBER_EXTENDED",
	tlv.MustParseTagNumber("9F0D"):   "ISSUER_ACTION_CODE_DEFAULT",
	tlv.MustParseTagNumber("9F0E"):   "ISSUER_ACTION_CODE_DENIAL",
	tlv.MustParseTagNumber("9F0F"):   "ISSUER_ACTION_CODE_ONLINE",
	tlv.MustParseTagNumber("9F10"):   "ISSUER_APPLICATION_DATA",
	tlv.MustParseTagNumber("9F11"):   "ISSUER_CODE_TABLE_INDEX",
	tlv.MustParseTagNumber("9F12"):   "APPLICATION_PREFERRED_NAME",
	tlv.MustParseTagNumber("9F13"):   "LAST_ONLINE_ATC_REGISTER",
	tlv.MustParseTagNumber("9F14"):   "LOWER_CONSECUTIVE_OFFLINE_LIMIT",
	tlv.MustParseTagNumber("9F15"):   "MERCHANT_CATEGORY_CODE",
	tlv.MustParseTagNumber("9F16"):   "MERCHANT_IDENTIFIER",
	tlv.MustParseTagNumber("9F17"):   "PIN_TRY_COUNTER",
	tlv.MustParseTagNumber("9F18"):   "ISSUER_SCRIPT_IDENTIFIER",
	tlv.MustParseTagNumber("9F19"):   "TOKEN_REQUESTOR_ID",
	tlv.MustParseTagNumber("9F1A"):   "TERMINAL_COUNTRY_CODE",
	tlv.MustParseTagNumber("9F1B"):   "TERMINAL_FLOOR_LIMIT",
	tlv.MustParseTagNumber("9F1C"):   "TERMINAL_IDENTIFICATION",
	tlv.MustParseTagNumber("9F1D"):   "TERMINAL_RISK_MANAGEMENT_DATA",
	tlv.MustParseTagNumber("9F1E"):   "INTERFACE_DEVICE_SERIAL_NUMBER",
	tlv.MustParseTagNumber("9F1F"):   "TRACK1_DISCRETIONARY_DATA",
	tlv.MustParseTagNumber("9F20"):   "TRACK2_DISCRETIONARY_DATA",
	tlv.MustParseTagNumber("9F21"):   "TRANSACTION_TIME",
	tlv.MustParseTagNumber("9F22"):   "CERTIFICATION_AUTHORITY_PUBLIC_KEY_INDEX_TERMINAL",
	tlv.MustParseTagNumber("9F23"):   "UPPER_CONSECUTIVE_OFFLINE_LIMIT",
	tlv.MustParseTagNumber("9F24"):   "PAYMENT_ACCOUNT_REFERENCE",
	tlv.MustParseTagNumber("9F26"):   "APPLICATION_CRYPTOGRAM",
	tlv.MustParseTagNumber("9F27"):   "CRYPTOGRAM_INFORMATION_DATA",
	tlv.MustParseTagNumber("9F2D"):   "ICC_PIN_ENCIPHERMENT_PUBLIC_KEY_CERTIFICATE",
	tlv.MustParseTagNumber("9F2E"):   "ICC_PIN_ENCIPHERMENT_PUBLIC_KEY_EXPONENT",
	tlv.MustParseTagNumber("9F2F"):   "ICC_PIN_ENCIPHERMENT_PUBLIC_KEY_REMAINDER",
	tlv.MustParseTagNumber("9F32"):   "ISSUER_PUBLIC_KEY_EXPONENT",
	tlv.MustParseTagNumber("9F33"):   "TERMINAL_CAPABILITIES",
	tlv.MustParseTagNumber("9F34"):   "CVM_RESULTS",
	tlv.MustParseTagNumber("9F35"):   "TERMINAL_TYPE",
	tlv.MustParseTagNumber("9F36"):   "APPLICATION_TRANSACTION_COUNTER",
	tlv.MustParseTagNumber("9F37"):   "UNPREDICTABLE_NUMBER",
	tlv.MustParseTagNumber("9F38"):   "PDOL",
	tlv.MustParseTagNumber("9F39"):   "POS_ENTRY_MODE",
	tlv.MustParseTagNumber("9F3A"):   "AMOUNT_REFERENCE_CURRENCY",
	tlv.MustParseTagNumber("9F3B"):   "APPLICATION_REFERENCE_CURRENCY",
	tlv.MustParseTagNumber("9F3C"):   "TRANSACTION_REFERENCE_CURRENCY_CODE",
	tlv.MustParseTagNumber("9F3D"):   "TRANSACTION_REFERENCE_CURRENCY_EXPONENT",
	tlv.MustParseTagNumber("9F40"):   "ADDITIONAL_TERMINAL_CAPABILITIES",
	tlv.MustParseTagNumber("9F41"):   "TRANSACTION_SEQUENCE_COUNTER",
	tlv.MustParseTagNumber("9F42"):   "APPLICATION_CURRENCY_CODE",
	tlv.MustParseTagNumber("9F43"):   "APPLICATION_REFERENCE_CURRENCY_EXPONENT",
	tlv.MustParseTagNumber("9F44"):   "APPLICATION_CURRENCY_EXPONENT",
	tlv.MustParseTagNumber("9F45"):   "DATA_AUTHENTICATION_CODE",
	tlv.MustParseTagNumber("9F46"):   "ICC_PUBLIC_KEY_CERTIFICATE",
	tlv.MustParseTagNumber("9F47"):   "ICC_PUBLIC_KEY_EXPONENT",
	tlv.MustParseTagNumber("9F48"):   "ICC_PUBLIC_KEY_REMAINDER",
	tlv.MustParseTagNumber("9F49"):   "DDOL",
	tlv.MustParseTagNumber("9F4A"):   "STATIC_DATA_AUTHENTICATION_TAG_LIST",
	tlv.MustParseTagNumber("9F4B"):   "SIGNED_DYNAMIC_APPLICATION_DATA",
	tlv.MustParseTagNumber("9F4C"):   "ICC_DYNAMIC_NUMBER",
	tlv.MustParseTagNumber("9F4D"):   "LOG_ENTRY",
	tlv.MustParseTagNumber("9F4E"):   "MERCHANT_NAME_AND_LOCATION",
	tlv.MustParseTagNumber("9F4F"):   "LOG_FORMAT",
	tlv.MustParseTagNumber("9F50"):   "OFFLINE_ACCUMULATOR_BALANCE",
	tlv.MustParseTagNumber("9F51"):   "APPLICATION_CURRENCY_CODE_DCC",
	tlv.MustParseTagNumber("9F52"):   "APPLICATION_DEFAULT_ACTION",
	tlv.MustParseTagNumber("9F53"):   "CONSECUTIVE_TRANSACTION_LIMIT_INTERNATIONAL",
	tlv.MustParseTagNumber("9F54"):   "CUMULATIVE_TOTAL_TRANSACTION_AMOUNT_LIMIT",
	tlv.MustParseTagNumber("9F55"):   "GEOGRAPHIC_INDICATOR",
	tlv.MustParseTagNumber("9F56"):   "ISSUER_AUTHENTICATION_INDICATOR",
	tlv.MustParseTagNumber("9F57"):   "ISSUER_COUNTRY_CODE",
	tlv.MustParseTagNumber("9F58"):   "CONSECUTIVE_TRANSACTION_LIMIT_DOMESTIC",
	tlv.MustParseTagNumber("9F59"):   "TERMINAL_TRANSACTION_TYPE",
	tlv.MustParseTagNumber("9F5A"):   "APPLICATION_PROGRAM_IDENTIFIER",
	tlv.MustParseTagNumber("9F5B"):   "ISSUER_SCRIPT_RESULTS",
	tlv.MustParseTagNumber("9F5C"):   "CUMULATIVE_TOTAL_TRANSACTION_AMOUNT_UPPER_LIMIT",
	tlv.MustParseTagNumber("9F5D"):   "AVAILABLE_OFFLINE_SPENDING_AMOUNT",
	tlv.MustParseTagNumber("9F5E"):   "CONSECUTIVE_TRANSACTION_COUNTER_INTERNATIONAL",
	tlv.MustParseTagNumber("9F5F"):   "DS_SLOT_AVAILABILITY",
	tlv.MustParseTagNumber("9F60"):   "CVC3_TRACK1",
	tlv.MustParseTagNumber("9F61"):   "CVC3_TRACK2",
	tlv.MustParseTagNumber("9F62"):   "PCVC3_TRACK1",
	tlv.MustParseTagNumber("9F63"):   "PUNATC_TRACK1",
	tlv.MustParseTagNumber("9F64"):   "NATC_TRACK1",
	tlv.MustParseTagNumber("9F65"):   "PCVC3_TRACK2",
	tlv.MustParseTagNumber("9F66"):   "TERMINAL_TRANSACTION_QUALIFIERS",
	tlv.MustParseTagNumber("9F67"):   "NATC_TRACK2",
	tlv.MustParseTagNumber("9F68"):   "CARD_ADDITIONAL_PROCESSES",
	tlv.MustParseTagNumber("9F69"):   "CARD_AUTHENTICATION_RELATED_DATA",
	tlv.MustParseTagNumber("9F6A"):   "UNPREDICTABLE_NUMBER_NUMERIC",
	tlv.MustParseTagNumber("9F6B"):   "TRACK2_DATA",
	tlv.MustParseTagNumber("9F6C"):   "CARD_TRANSACTION_QUALIFIERS",
	tlv.MustParseTagNumber("9F6D"):   "VLP_AVAILABLE_FUNDS",
	tlv.MustParseTagNumber("9F6E"):   "FORM_FACTOR_INDICATOR",
	tlv.MustParseTagNumber("9F70"):   "PROTECTED_DATA_ENVELOPE_1",
	tlv.MustParseTagNumber("9F71"):   "PROTECTED_DATA_ENVELOPE_2",
	tlv.MustParseTagNumber("9F72"):   "PROTECTED_DATA_ENVELOPE_3",
	tlv.MustParseTagNumber("9F73"):   "PROTECTED_DATA_ENVELOPE_4",
	tlv.MustParseTagNumber("9F74"):   "PROTECTED_DATA_ENVELOPE_5",
	tlv.MustParseTagNumber("9F75"):   "UNPROTECTED_DATA_ENVELOPE_1",
	tlv.MustParseTagNumber("9F76"):   "UNPROTECTED_DATA_ENVELOPE_2",
	tlv.MustParseTagNumber("9F77"):   "UNPROTECTED_DATA_ENVELOPE_3",
	tlv.MustParseTagNumber("9F78"):   "UNPROTECTED_DATA_ENVELOPE_4",
	tlv.MustParseTagNumber("9F79"):   "UNPROTECTED_DATA_ENVELOPE_5",
	tlv.MustParseTagNumber("9F7C"):   "MERCHANT_CUSTOM_DATA",
	tlv.MustParseTagNumber("9F7D"):   "DS_SLOT_MANAGEMENT_CONTROL",
	tlv.MustParseTagNumber("9F7E"):   "DS_UNPREDICTABLE_NUMBER",
	tlv.MustParseTagNumber("9F7F"):   "CARD_PRODUCTION_LIFE_CYCLE_DATA",
	tlv.MustParseTagNumber("5F20"):   "CARDHOLDER_NAME",
	tlv.MustParseTagNumber("5F24"):   "APPLICATION_EXPIRATION_DATE",
	tlv.MustParseTagNumber("5F25"):   "APPLICATION_EFFECTIVE_DATE",
	tlv.MustParseTagNumber("5F28"):   "ISSUER_COUNTRY_CODE",
	tlv.MustParseTagNumber("5F2A"):   "TRANSACTION_CURRENCY_CODE",
	tlv.MustParseTagNumber("5F2D"):   "LANGUAGE_PREFERENCE",
	tlv.MustParseTagNumber("5F30"):   "SERVICE_CODE",
	tlv.MustParseTagNumber("5F34"):   "APPLICATION_PAN_SEQUENCE_NUMBER",
	tlv.MustParseTagNumber("5F36"):   "TRANSACTION_CURRENCY_EXPONENT",
	tlv.MustParseTagNumber("5F50"):   "ISSUER_URL",
	tlv.MustParseTagNumber("5F53"):   "IBAN",
	tlv.MustParseTagNumber("5F54"):   "BANK_IDENTIFIER_CODE",
	tlv.MustParseTagNumber("5F55"):   "ISSUER_COUNTRY_CODE_ALPHA2",
	tlv.MustParseTagNumber("5F56"):   "ISSUER_COUNTRY_CODE_ALPHA3",
	tlv.MustParseTagNumber("BF0C"):   "FCI_ISSUER_DISCRETIONARY_DATA",
}

// TagName returns the symbolic name for tag, or UNKNOWN_<HEX> if tag isn't
// in the dictionary. This is a pure lookup: it never drives parsing.
func TagName(tag tlv.TagNumber) string {
	if name, ok := TagNames[tag]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_%s", tag.String())
}

// init wires the Tag Dictionary into pkg/tlv's generic "Unknown Tag" report
// lines, so FCI.Describe() and the directory record report annotate any tag
// not covered by the reflection-driven struct fields with its symbolic name.
func init() {
	tlv.TagNameResolver = func(rawTag string) string {
		tag, err := tlv.ParseTagNumber(rawTag)
		if err != nil {
			return ""
		}
		return TagNames[tag]
	}
}
